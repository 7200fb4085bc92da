package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRunNotFound is returned when no run matches the requested id.
var ErrRunNotFound = errors.New("run not found")

// Run summarizes one detection or cropping pass.
type Run struct {
	ID         string
	Pass       string
	StartedAt  time.Time
	FinishedAt time.Time
	Workers    int
	Succeeded  int
	Failed     int
	Skipped    int
	Canceled   bool
}

// Finished reports whether FinishRun was recorded for the run.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Item is the recorded outcome of one metadata row within a run.
type Item struct {
	RunID    string
	ClipID   string
	Status   string
	Message  string
	Crop     string
	Duration time.Duration
}

const runColumns = "id, pass, started_at, finished_at, workers, succeeded, failed, skipped, canceled"

// BeginRun records the start of a pass.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id required")
	}
	_, err := s.exec(ctx,
		`INSERT INTO runs (id, pass, started_at, workers) VALUES (?, ?, ?, ?)`,
		run.ID, run.Pass, formatTime(run.StartedAt), run.Workers,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordItem appends an item outcome to a run.
func (s *Store) RecordItem(ctx context.Context, item Item) error {
	_, err := s.exec(ctx,
		`INSERT INTO items (run_id, clip_id, status, message, crop, duration_ms) VALUES (?, ?, ?, ?, ?, ?)`,
		item.RunID, item.ClipID, item.Status,
		nullableString(item.Message), nullableString(item.Crop), item.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// FinishRun stores the final counts for a run.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	res, err := s.exec(ctx,
		`UPDATE runs SET finished_at = ?, succeeded = ?, failed = ?, skipped = ?, canceled = ? WHERE id = ?`,
		formatTime(run.FinishedAt), run.Succeeded, run.Failed, run.Skipped, boolToInt(run.Canceled), run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, run.ID)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A non-positive limit
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun resolves a run by full id or unique id prefix.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Run{}, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY started_at DESC LIMIT 2`,
		id, escapeLike(id)+"%",
	)
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, fmt.Errorf("scan run: %w", err)
		}
		if run.ID == id {
			return run, nil
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(matches) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// RunItems returns the recorded items of a run in completion order.
func (s *Store) RunItems(ctx context.Context, runID string) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, clip_id, status, message, crop, duration_ms FROM items WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			item     Item
			message  sql.NullString
			cropSize sql.NullString
			millis   int64
		)
		if err := rows.Scan(&item.RunID, &item.ClipID, &item.Status, &message, &cropSize, &millis); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		item.Message = message.String
		item.Crop = cropSize.String
		item.Duration = time.Duration(millis) * time.Millisecond
		items = append(items, item)
	}
	return items, rows.Err()
}

// Prune deletes all but the newest keep runs together with their items.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	const keepSet = `SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`
	if _, err := s.exec(ctx, `DELETE FROM items WHERE run_id NOT IN (`+keepSet+`)`, keep); err != nil {
		return 0, fmt.Errorf("prune items: %w", err)
	}
	res, err := s.exec(ctx, `DELETE FROM runs WHERE id NOT IN (`+keepSet+`)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run      Run
		started  sql.NullString
		finished sql.NullString
		canceled int
	)
	if err := scanner.Scan(&run.ID, &run.Pass, &started, &finished, &run.Workers,
		&run.Succeeded, &run.Failed, &run.Skipped, &canceled); err != nil {
		return Run{}, err
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	run.Canceled = canceled != 0
	return run, nil
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}
