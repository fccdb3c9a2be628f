package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/sift/internal/model"
	"github.com/goccy/go-json"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// SaveRun stores a completed run and sets its ID.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run *model.Run) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}

	snapshot, err := json.Marshal(run.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (started_at, duration_ms, output_dir, prefix, append_mode,
			full_stats, classified, failed, snapshot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.StartedAt.UTC(),
		run.Duration.Milliseconds(),
		run.OutputDir,
		run.Prefix,
		run.Append,
		run.Full,
		run.Classified,
		run.Failed,
		string(snapshot),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get run id: %w", err)
	}

	for i, path := range run.Inputs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_inputs (run_id, position, path) VALUES (?, ?, ?)`,
			id, i, path,
		); err != nil {
			return fmt.Errorf("failed to save run input %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	run.ID = id
	return nil
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, duration_ms, output_dir, prefix, append_mode,
			full_stats, classified, failed, snapshot
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	for i := range runs {
		inputs, err := s.runInputs(ctx, s.db, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Inputs = inputs
	}

	return runs, nil
}

// GetRun returns the run with the given ID.
func (s *SQLiteStorage) GetRun(ctx context.Context, id int64) (*model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, duration_ms, output_dir, prefix, append_mode,
			full_stats, classified, failed, snapshot
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	run.Inputs, err = s.runInputs(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ClearRuns deletes every recorded run and returns how many were removed.
func (s *SQLiteStorage) ClearRuns(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_inputs`); err != nil {
		return 0, fmt.Errorf("failed to delete run inputs: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted runs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (model.Run, error) {
	var (
		run        model.Run
		durationMS int64
		snapshot   string
	)

	err := sc.Scan(
		&run.ID,
		&run.StartedAt,
		&durationMS,
		&run.OutputDir,
		&run.Prefix,
		&run.Append,
		&run.Full,
		&run.Classified,
		&run.Failed,
		&snapshot,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return run, err
	}
	if err != nil {
		return run, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Duration = time.Duration(durationMS) * time.Millisecond
	if err := json.Unmarshal([]byte(snapshot), &run.Snapshot); err != nil {
		return run, fmt.Errorf("failed to decode snapshot of run %d: %w", run.ID, err)
	}
	return run, nil
}

func (s *SQLiteStorage) runInputs(ctx context.Context, q queryable, runID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT path FROM run_inputs WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run inputs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var inputs []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan run input: %w", err)
		}
		inputs = append(inputs, path)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run inputs: %w", err)
	}
	return inputs, nil
}
