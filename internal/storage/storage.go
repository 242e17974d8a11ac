// Package storage defines the Storage interface that every database
// backend must satisfy to work with this application.
//
// Handlers depend only on this interface, so the postgres and sqlite
// backends are interchangeable and tests can pass a fake.
package storage

import (
	"context"

	"github.com/aanand-mishra/student-api/internal/types"
)

// Storage is the database contract.
//
// Every method acquires its own connection for the duration of the call and
// releases it before returning, on success and on failure alike.
type Storage interface {
	// CreateStudent inserts student (its ID is ignored) inside a
	// transaction and returns the ID generated by the database.
	CreateStudent(ctx context.Context, student types.Student) (int64, error)

	// ListStudents returns every student in the table, in whatever order
	// the database yields them. Returns an empty slice (not nil) when the
	// table is empty.
	ListStudents(ctx context.Context) ([]types.Student, error)

	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection pool.
	Close() error
}
