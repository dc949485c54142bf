package store

import (
	"context"
	"fmt"

	"github.com/erkkaervice/philosophers/internal/ir"
)

// WriteRun inserts a run record before the simulation starts.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - a duplicate ID is silently
// ignored. Any summary on run is ignored; use FinishRun.
func (s *Store) WriteRun(ctx context.Context, run ir.Run) error {
	cfgJSON, err := marshalConfig(run.Config)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, config, actors, started_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		cfgJSON,
		run.Config.Actors,
		formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteEvent inserts one printed line of a run.
// Uses ON CONFLICT DO NOTHING for idempotency on (run_id, seq).
//
// Note: The run referenced by runID must exist (foreign key constraint).
// Implements engine.EventWriter.
func (s *Store) WriteEvent(ctx context.Context, runID string, ev ir.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (run_id, seq, elapsed_ms, actor, kind)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`,
		runID,
		ev.Seq,
		ev.ElapsedMs,
		ev.Actor,
		string(ev.Kind),
	)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// FinishRun stores the summary of a finished run and its per-actor meal
// counts in one transaction.
//
// Returns ErrRunNotFound if no run has the given ID.
func (s *Store) FinishRun(ctx context.Context, runID string, sum ir.Summary) error {
	sumJSON, err := marshalSummary(sum)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("finish run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		UPDATE runs SET outcome = ?, summary = ? WHERE id = ?
	`, string(sum.Outcome), sumJSON, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %q: %w", runID, ErrRunNotFound)
	}

	for i, meals := range sum.Meals {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO meals (run_id, actor, meals)
			VALUES (?, ?, ?)
			ON CONFLICT(run_id, actor) DO UPDATE SET meals = excluded.meals
		`, runID, i+1, meals)
		if err != nil {
			return fmt.Errorf("finish run: write meals for actor %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("finish run: commit: %w", err)
	}
	return nil
}
