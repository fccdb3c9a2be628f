package storage

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/sift/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "history", "test.db")

	store, err := Open(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRun(started time.Time, inputs ...string) *model.Run {
	return &model.Run{
		StartedAt:  started,
		Duration:   1500 * time.Millisecond,
		OutputDir:  "out",
		Prefix:     "p_",
		Inputs:     inputs,
		Classified: 4,
		Full:       true,
		Snapshot: model.Snapshot{
			Integers: &model.NumericStats{Count: 2, Min: 10, Max: 30, Sum: 40},
			Strings:  &model.StringStats{Count: 2, MinLength: 1, MaxLength: 5},
		},
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))

	var version int
	require.NoError(t, store.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	require.ErrorIs(t, err, ErrEmptyString)
}

func TestSaveRun_RoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	run := testRun(started, "a.txt", "b.txt")
	require.NoError(t, store.SaveRun(ctx, run))
	require.NotZero(t, run.ID)

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)

	assert.True(t, started.Equal(got.StartedAt))
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
	assert.Equal(t, []string{"a.txt", "b.txt"}, got.Inputs)
	assert.Equal(t, "out", got.OutputDir)
	assert.Equal(t, "p_", got.Prefix)
	assert.True(t, got.Full)
	assert.False(t, got.Append)
	assert.Equal(t, 4, got.Classified)
	assert.Equal(t, run.Snapshot, got.Snapshot)
	assert.Nil(t, got.Snapshot.Floats)
}

func TestSaveRun_NonFiniteSnapshot(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	run := testRun(time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), "big.txt")
	run.Snapshot.Floats = &model.NumericStats{Count: 2, Min: -1e308, Max: 1e308, Sum: math.Inf(1)}
	run.Snapshot.Integers = &model.NumericStats{Count: 1, Min: 1, Max: 1, Sum: math.Inf(-1)}
	require.NoError(t, store.SaveRun(ctx, run))

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Snapshot.Floats)
	assert.True(t, math.IsInf(got.Snapshot.Floats.Sum, 1))
	assert.InDelta(t, -1e308, got.Snapshot.Floats.Min, 0)
	assert.InDelta(t, 1e308, got.Snapshot.Floats.Max, 0)
	assert.True(t, math.IsInf(got.Snapshot.Integers.Sum, -1))

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSaveRun_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		run  *model.Run
		name string
	}{
		{name: "nil run", run: nil},
		{name: "missing start", run: &model.Run{}},
		{name: "negative count", run: &model.Run{StartedAt: time.Now(), Classified: -1}},
		{name: "more failures than inputs", run: &model.Run{StartedAt: time.Now(), Failed: 2, Inputs: []string{"a"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, store.SaveRun(ctx, tt.run))
		})
	}
}

func TestListRuns_NewestFirstWithLimit(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.SaveRun(ctx, testRun(base.Add(time.Duration(i)*time.Hour), "in.txt")))
	}

	all, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].StartedAt.After(all[1].StartedAt))
	assert.True(t, all[1].StartedAt.After(all[2].StartedAt))
	assert.Equal(t, []string{"in.txt"}, all[2].Inputs)

	limited, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, all[0].ID, limited[0].ID)
}

func TestGetRun_NotFound(t *testing.T) {
	store := createTestStorage(t)
	_, err := store.GetRun(context.Background(), 999)
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestClearRuns(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRun(ctx, testRun(time.Now(), "x")))
	require.NoError(t, store.SaveRun(ctx, testRun(time.Now(), "y")))

	n, err := store.ClearRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
