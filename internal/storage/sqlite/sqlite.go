// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite keeps everything in a single file on disk, with no server process
// to run. It backs local development and the end-to-end tests; production
// uses the postgres package.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aanand-mishra/student-api/internal/config"
	"github.com/aanand-mishra/student-api/internal/types"

	// Registers the "sqlite3" driver with database/sql.
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at cfg.StoragePath, creating the file and
// its directory when needed, and creates the students table if it does
// not already exist.
func New(ctx context.Context, cfg config.Database) (*SQLite, error) {
	if dir := filepath.Dir(cfg.StoragePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.StoragePath+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// SQLite allows a single writer. One connection serializes requests in
	// the pool instead of failing them with "database is locked".
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS students (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			name             TEXT NOT NULL,
			admission_number TEXT NOT NULL,
			class            TEXT NOT NULL,
			stream           TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// CreateStudent inserts a new row inside an explicit transaction and
// returns the id SQLite assigned to it.
//
// The ? placeholders are bound by the driver, so the values are never
// parsed as SQL.
func (s *SQLite) CreateStudent(ctx context.Context, student types.Student) (id int64, err error) {
	conn, err := s.Db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: acquire connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx,
		"INSERT INTO students (name, admission_number, class, stream) VALUES (?, ?, ?, ?) RETURNING id",
		student.Name, student.AdmissionNumber, student.ClassName, student.Stream,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: insert: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("CreateStudent: commit: %w", err)
	}

	return id, nil
}

// ListStudents returns all student rows as a slice.
func (s *SQLite) ListStudents(ctx context.Context) ([]types.Student, error) {
	conn, err := s.Db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListStudents: acquire connection: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx,
		"SELECT id, name, admission_number, class, stream FROM students")
	if err != nil {
		return nil, fmt.Errorf("ListStudents: query: %w", err)
	}
	defer rows.Close()

	// Non-nil, so an empty table encodes as [] rather than null.
	students := make([]types.Student, 0)

	for rows.Next() {
		var student types.Student
		if err := rows.Scan(
			&student.ID,
			&student.Name,
			&student.AdmissionNumber,
			&student.ClassName,
			&student.Stream,
		); err != nil {
			return nil, fmt.Errorf("ListStudents: scan row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListStudents: rows iteration: %w", err)
	}

	return students, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	if err := s.Db.PingContext(ctx); err != nil {
		return fmt.Errorf("Ping: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.Db.Close()
}
