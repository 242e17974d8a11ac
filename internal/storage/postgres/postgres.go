// Package postgres provides the PostgreSQL implementation of
// storage.Storage on top of database/sql and the pgx driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aanand-mishra/student-api/internal/config"
	"github.com/aanand-mishra/student-api/internal/types"

	// Registers the "pgx" driver with database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

const schema = `
	CREATE TABLE IF NOT EXISTS students (
		id               SERIAL PRIMARY KEY,
		name             TEXT NOT NULL,
		admission_number TEXT NOT NULL,
		class            TEXT NOT NULL,
		stream           TEXT NOT NULL
	)
`

// Postgres is the concrete implementation of storage.Storage.
type Postgres struct {
	Db *sql.DB
}

// New opens a connection pool for cfg, checks that the server answers,
// and creates the students table if it does not already exist.
func New(ctx context.Context, cfg config.Database) (*Postgres, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres.New: open db: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	p := NewWithDB(db)
	if err := p.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return p, nil
}

// NewWithDB wraps an already opened *sql.DB. It does not touch the schema.
func NewWithDB(db *sql.DB) *Postgres {
	return &Postgres{Db: db}
}

// EnsureSchema creates the students table. It is idempotent and safe to
// run on every startup.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.Db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("postgres.EnsureSchema: create table: %w", err)
	}
	return nil
}

// CreateStudent runs the insert in an explicit transaction on a connection
// held only for this call, and commits before the connection is released.
func (p *Postgres) CreateStudent(ctx context.Context, student types.Student) (id int64, err error) {
	conn, err := p.Db.Conn(ctx)
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
		`INSERT INTO students (name, admission_number, class, stream)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
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

// ListStudents reads the whole students table.
func (p *Postgres) ListStudents(ctx context.Context) ([]types.Student, error) {
	conn, err := p.Db.Conn(ctx)
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

	students := make([]types.Student, 0)
	for rows.Next() {
		var s types.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.AdmissionNumber, &s.ClassName, &s.Stream); err != nil {
			return nil, fmt.Errorf("ListStudents: scan row: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListStudents: rows iteration: %w", err)
	}

	return students, nil
}

// Ping checks the database is reachable.
func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.Db.PingContext(ctx); err != nil {
		return fmt.Errorf("Ping: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	return p.Db.Close()
}
