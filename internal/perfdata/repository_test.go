package perfdata_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"codeberg.org/mutker/perfmon/internal/errors"
	"codeberg.org/mutker/perfmon/internal/logger"
	"codeberg.org/mutker/perfmon/internal/perfdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *perfdata.Store {
	t.Helper()

	store, err := perfdata.NewStore(filepath.Join(t.TempDir(), "calc", "perf.db"), logger.Default())
	require.NoError(t, err)

	return store
}

func TestNewStoreRequiresPath(t *testing.T) {
	_, err := perfdata.NewStore("", nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, perfdata.ErrInvalidPath))
}

func TestAppendAndReadAll(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	first := []perfdata.Record{
		{Operation: "computing gmfs", TimeSec: 1.5, MemoryMB: 12.25, Counts: 1},
		{Operation: "reading sites", TimeSec: 0.25, Counts: 1},
	}
	second := []perfdata.Record{
		{Operation: "computing gmfs", TimeSec: 0.5, MemoryMB: 3, Counts: 1},
	}

	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))

	got, err := store.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, append(first, second...), got)
}

func TestAppendEmptyDoesNotCreateStore(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Append(context.Background(), nil))

	_, err := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err), "store file must not exist after an empty append")
}

func TestAppendRejectsWideOperation(t *testing.T) {
	store := newStore(t)

	err := store.Append(context.Background(), []perfdata.Record{
		{Operation: strings.Repeat("x", perfdata.MaxOperationBytes+1), TimeSec: 1, Counts: 1},
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, perfdata.ErrInvalidRecord))
}

func TestAppendCreatesDatasetInExistingFile(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))

	db, err := sql.Open("sqlite3", store.Path())
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE other (id INTEGER)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	got, err := store.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, store.Append(ctx, []perfdata.Record{{Operation: "op", TimeSec: 1, Counts: 1}}))

	got, err = store.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestReadAllMissingStore(t *testing.T) {
	store := newStore(t)

	_, err := store.ReadAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, perfdata.ErrStoreNotFound))
}

func TestSchemaMismatchIsRejected(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Append(ctx, []perfdata.Record{{Operation: "op", TimeSec: 1, Counts: 1}}))

	db, err := sql.Open("sqlite3", store.Path())
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE schema_versions SET version = ?`, perfdata.SchemaVersion+1)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	err = store.Append(ctx, []perfdata.Record{{Operation: "op", TimeSec: 1, Counts: 1}})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, perfdata.ErrSchemaMismatch))
}

func TestConcurrentAppenders(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shared.db")

	const writers = 4
	const batches = 5

	seed, err := perfdata.NewStore(path, nil)
	require.NoError(t, err)
	require.NoError(t, seed.Append(ctx, []perfdata.Record{{Operation: "setup", TimeSec: 0.1, Counts: 1}}))

	var wg sync.WaitGroup
	errs := make(chan error, writers*batches)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store, err := perfdata.NewStore(path, nil)
			if err != nil {
				errs <- err
				return
			}
			for b := 0; b < batches; b++ {
				errs <- store.Append(ctx, []perfdata.Record{{Operation: "task", TimeSec: 0.1, Counts: 1}})
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	got, err := seed.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, writers*batches+1)
}
