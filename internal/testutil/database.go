// Package testutil provides helpers shared by the command tests: input
// fixtures on disk and pre-seeded history databases.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/sift/internal/model"
	"github.com/Veraticus/sift/internal/storage"
)

// TestDB is a migrated history database in a temporary directory.
type TestDB struct {
	Storage *storage.SQLiteStorage
	Path    string
	Runs    []*model.Run
}

// SetupTestDB creates a history database seeded with runs. The runs get
// their IDs assigned. The database is closed when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.NewRun("a.txt"))
//	cmd.SetArgs([]string{"history", "--history-db", db.Path})
func SetupTestDB(t *testing.T, runs ...*model.Run) *TestDB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := storage.Open(ctx, path)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	for _, run := range runs {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("failed to seed run %v: %v", run.Inputs, err)
		}
	}

	// Register cleanup
	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		Path:    path,
		Runs:    runs,
	}
}

// MustListRuns returns every recorded run, newest first, or fails the test.
func (db *TestDB) MustListRuns(t *testing.T) []model.Run {
	t.Helper()
	runs, err := db.Storage.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	return runs
}
