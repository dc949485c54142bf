package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erkkaervice/philosophers/internal/ir"
)

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("run not found")

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// ReadRun retrieves a single run by ID, with its summary if it finished.
// Returns ErrRunNotFound if no run has the given ID.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, config, started_at, summary
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Run{}, fmt.Errorf("read run %q: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return ir.Run{}, fmt.Errorf("read run %q: %w", id, err)
	}
	return run, nil
}

// LatestRun returns the most recently started run.
// Returns ErrRunNotFound if the store is empty.
func (s *Store) LatestRun(ctx context.Context) (ir.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, config, started_at, summary
		FROM runs
		ORDER BY started_at DESC, id COLLATE BINARY DESC
		LIMIT 1
	`)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Run{}, fmt.Errorf("latest run: %w", ErrRunNotFound)
	}
	if err != nil {
		return ir.Run{}, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns every run, newest first.
//
// Returns an empty slice (not nil) if the store holds no runs.
func (s *Store) ListRuns(ctx context.Context) ([]ir.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, config, started_at, summary
		FROM runs
		ORDER BY started_at DESC, id COLLATE BINARY DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadEvents returns the printed lines of a run in output order.
//
// Returns an empty slice (not nil) if the run has no events.
func (s *Store) ReadEvents(ctx context.Context, runID string) ([]ir.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, elapsed_ms, actor, kind
		FROM events
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []ir.Event{}
	for rows.Next() {
		var ev ir.Event
		var kind string
		if err := rows.Scan(&ev.Seq, &ev.ElapsedMs, &ev.Actor, &kind); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Kind = ir.EventKind(kind)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// ReadMeals returns meals eaten per actor as stored by FinishRun, index 0 is
// actor 1. Returns an empty slice for a run that never finished.
func (s *Store) ReadMeals(ctx context.Context, runID string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT actor, meals
		FROM meals
		WHERE run_id = ?
		ORDER BY actor ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query meals: %w", err)
	}
	defer rows.Close()

	meals := []int{}
	for rows.Next() {
		var actor, n int
		if err := rows.Scan(&actor, &n); err != nil {
			return nil, fmt.Errorf("scan meals: %w", err)
		}
		meals = append(meals, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meals: %w", err)
	}
	return meals, nil
}

func scanRun(row rowScanner) (ir.Run, error) {
	var (
		run       ir.Run
		cfgJSON   string
		startedAt string
		summary   sql.NullString
	)
	if err := row.Scan(&run.ID, &cfgJSON, &startedAt, &summary); err != nil {
		return ir.Run{}, err
	}

	cfg, err := unmarshalConfig(cfgJSON)
	if err != nil {
		return ir.Run{}, err
	}
	run.Config = cfg

	run.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return ir.Run{}, err
	}

	var raw *string
	if summary.Valid {
		raw = &summary.String
	}
	run.Summary, err = unmarshalSummary(raw)
	if err != nil {
		return ir.Run{}, err
	}
	return run, nil
}
