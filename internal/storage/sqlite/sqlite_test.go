package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-api/internal/config"
	"github.com/aanand-mishra/student-api/internal/types"
)

func newStore(t *testing.T) *SQLite {
	t.Helper()

	store, err := New(context.Background(), config.Database{
		Driver:      config.DriverSQLite,
		StoragePath: filepath.Join(t.TempDir(), "nested", "students.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestListStudents_EmptyTable(t *testing.T) {
	store := newStore(t)

	students, err := store.ListStudents(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
}

func TestCreateThenList(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	jane := types.Student{
		Name:            "Jane Doe",
		AdmissionNumber: "A123",
		ClassName:       "Form 2",
		Stream:          "North",
	}

	id, err := store.CreateStudent(ctx, jane)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	students, err := store.ListStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)

	jane.ID = id
	assert.Equal(t, jane, students[0])
}

func TestCreateStudent_DuplicateAdmissionNumbersAllowed(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	s := types.Student{Name: "A", AdmissionNumber: "X1", ClassName: "Form 1", Stream: "East"}
	first, err := store.CreateStudent(ctx, s)
	require.NoError(t, err)
	second, err := store.CreateStudent(ctx, s)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCreateStudent_ConcurrentInsertsGetDistinctIDs(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	const n = 20
	ids := make([]int64, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i], errs[i] = store.CreateStudent(ctx, types.Student{
				Name:            fmt.Sprintf("student %d", i),
				AdmissionNumber: fmt.Sprintf("A%03d", i),
				ClassName:       "Form 1",
				Stream:          "West",
			})
		}()
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for i := range n {
		require.NoError(t, errs[i])
		assert.Positive(t, ids[i])
		assert.False(t, seen[ids[i]], "duplicate id %d", ids[i])
		seen[ids[i]] = true
	}

	students, err := store.ListStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, students, n)
}

func TestClosedStoreFails(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Ping(context.Background()))
	require.NoError(t, store.Close())

	_, err := store.ListStudents(context.Background())
	require.Error(t, err)

	_, err = store.CreateStudent(context.Background(), types.Student{Name: "x"})
	require.Error(t, err)

	assert.Error(t, store.Ping(context.Background()))
}

func TestNew_ReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.db")
	ctx := context.Background()
	cfg := config.Database{Driver: config.DriverSQLite, StoragePath: path}

	store, err := New(ctx, cfg)
	require.NoError(t, err)
	_, err = store.CreateStudent(ctx, types.Student{Name: "Jane", AdmissionNumber: "A1", ClassName: "Form 2", Stream: "North"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = New(ctx, cfg)
	require.NoError(t, err)
	defer store.Close()

	students, err := store.ListStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 1)
}
