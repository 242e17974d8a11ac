package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-api/internal/types"
)

var jane = types.Student{
	Name:            "Jane Doe",
	AdmissionNumber: "A123",
	ClassName:       "Form 2",
	Stream:          "North",
}

func newMock(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewWithDB(db), mock
}

func TestEnsureSchema(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS students").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_Error(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS students").
		WillReturnError(errors.New("permission denied"))

	err := store.EnsureSchema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestCreateStudent(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO students").
		WithArgs("Jane Doe", "A123", "Form 2", "North").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectCommit()

	id, err := store.CreateStudent(context.Background(), jane)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateStudent_InsertErrorRollsBack(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO students").
		WithArgs("Jane Doe", "A123", "Form 2", "North").
		WillReturnError(errors.New("duplicate key value violates unique constraint"))
	mock.ExpectRollback()

	id, err := store.CreateStudent(context.Background(), jane)
	require.Error(t, err)
	assert.Zero(t, id)
	assert.Contains(t, err.Error(), "duplicate key value")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateStudent_CommitError(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO students").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

	id, err := store.CreateStudent(context.Background(), jane)
	require.Error(t, err)
	assert.Zero(t, id)
	assert.Contains(t, err.Error(), "commit")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateStudent_BeginError(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	_, err := store.CreateStudent(context.Background(), jane)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many connections")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListStudents(t *testing.T) {
	store, mock := newMock(t)

	rows := sqlmock.NewRows([]string{"id", "name", "admission_number", "class", "stream"}).
		AddRow(int64(1), "Jane Doe", "A123", "Form 2", "North").
		AddRow(int64(2), "John Roe", "A124", "Form 3", "South")
	mock.ExpectQuery("SELECT id, name, admission_number, class, stream FROM students").
		WillReturnRows(rows)

	students, err := store.ListStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)

	want := jane
	want.ID = 1
	assert.Equal(t, want, students[0])
	assert.Equal(t, "John Roe", students[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListStudents_Empty(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery("SELECT (.+) FROM students").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "admission_number", "class", "stream"}))

	students, err := store.ListStudents(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
}

func TestListStudents_QueryError(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery("SELECT (.+) FROM students").
		WillReturnError(errors.New("connection refused"))

	students, err := store.ListStudents(context.Background())
	require.Error(t, err)
	assert.Nil(t, students)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestListStudents_RowError(t *testing.T) {
	store, mock := newMock(t)

	rows := sqlmock.NewRows([]string{"id", "name", "admission_number", "class", "stream"}).
		AddRow(int64(1), "Jane Doe", "A123", "Form 2", "North").
		RowError(0, errors.New("server closed the connection"))
	mock.ExpectQuery("SELECT (.+) FROM students").WillReturnRows(rows)

	_, err := store.ListStudents(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server closed the connection")
}

func TestPing(t *testing.T) {
	store, _ := newMock(t)

	assert.NoError(t, store.Ping(context.Background()))
}
