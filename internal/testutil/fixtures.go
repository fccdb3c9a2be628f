package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/sift/internal/model"
)

// WriteLines writes lines, each newline terminated, to dir/name and returns
// the full path.
func WriteLines(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	var content string
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// ReadLines returns the lines of path. A missing file fails the test.
func ReadLines(t *testing.T, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// NewRun returns a run over inputs with one observation of each category.
func NewRun(inputs ...string) *model.Run {
	return &model.Run{
		StartedAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:   time.Second,
		OutputDir:  ".",
		Inputs:     inputs,
		Classified: 3,
		Snapshot: model.Snapshot{
			Integers: &model.NumericStats{Count: 1, Min: 7, Max: 7, Sum: 7},
			Floats:   &model.NumericStats{Count: 1, Min: 2.5, Max: 2.5, Sum: 2.5},
			Strings:  &model.StringStats{Count: 1, MinLength: 3, MaxLength: 3},
		},
	}
}
