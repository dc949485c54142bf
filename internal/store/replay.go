package store

import (
	"context"
	"fmt"

	"github.com/erkkaervice/philosophers/internal/ir"
)

// RunState is a recorded run together with its event log and an analysis
// of whether the recording is whole.
type RunState struct {
	Run    ir.Run
	Events []ir.Event

	// LastSeq is the highest recorded seq, 0 if no events.
	LastSeq int64

	// Finished is true once FinishRun stored a summary.
	Finished bool

	// Gaps counts missing seq numbers between 1 and LastSeq.
	Gaps int

	// DigestMatches reports whether the stored events hash to the summary
	// digest. Always false for an unfinished run.
	DigestMatches bool
}

// GetRunState retrieves a run and its events and checks them against the
// stored summary.
func (s *Store) GetRunState(ctx context.Context, runID string) (RunState, error) {
	run, err := s.ReadRun(ctx, runID)
	if err != nil {
		return RunState{}, fmt.Errorf("get run state: %w", err)
	}

	events, err := s.ReadEvents(ctx, runID)
	if err != nil {
		return RunState{}, fmt.Errorf("get run state: %w", err)
	}

	state := RunState{
		Run:      run,
		Events:   events,
		Finished: run.Summary != nil,
	}
	if n := len(events); n > 0 {
		state.LastSeq = events[n-1].Seq
		state.Gaps = int(state.LastSeq) - n
	}
	if state.Finished {
		state.DigestMatches = ir.LogDigest(events) == run.Summary.Digest
	}
	return state, nil
}

// FindUnfinishedRuns returns runs that were started but never given a
// summary, such as runs whose process was killed.
func (s *Store) FindUnfinishedRuns(ctx context.Context) ([]ir.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, config, started_at, summary
		FROM runs
		WHERE summary IS NULL
		ORDER BY started_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query unfinished runs: %w", err)
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
		return nil, fmt.Errorf("iterate unfinished runs: %w", err)
	}
	return runs, nil
}
