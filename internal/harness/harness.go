package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/erkkaervice/philosophers/internal/engine"
	"github.com/erkkaervice/philosophers/internal/ir"
	"github.com/erkkaervice/philosophers/internal/store"
)

// DefaultTimeout caps a scenario that sets no timeout_ms.
const DefaultTimeout = 30 * time.Second

// Harness is the scenario execution engine.
// It runs each scenario against a fresh in-memory store with a fixed run id.
type Harness struct {
	store  *store.Store
	runIDs engine.RunIDGenerator
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database and record the run
// 2. Run the simulation with the scenario timeout
// 3. Compare printed output, recorded events and recorded digest
// 4. Check log properties and expectations
//
// The returned error covers setup failures only. A run that violates a
// property or misses an expectation returns a failing Result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	// Create fresh in-memory SQLite database
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		runIDs: engine.NewFixedGenerator(scenario.Name),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	return h.run(ctx, scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	runID := h.runIDs.Generate()
	run := ir.Run{ID: runID, Config: scenario.Config, StartedAt: time.Now()}
	if err := h.store.WriteRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	rec := engine.NewRecorder(runID, h.store)
	rec.Start(ctx)

	var out bytes.Buffer
	sim, err := engine.New(scenario.Config, &out,
		engine.WithSink(rec),
		engine.WithLogger(h.logger),
		engine.WithStagger(!scenario.NoStagger),
	)
	if err != nil {
		rec.Close()
		return nil, fmt.Errorf("failed to build simulation: %w", err)
	}

	timeout := DefaultTimeout
	if scenario.TimeoutMs > 0 {
		timeout = time.Duration(scenario.TimeoutMs) * time.Millisecond
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, runErr := sim.Run(runCtx)
	if err := rec.Close(); err != nil {
		return nil, fmt.Errorf("failed to record events: %w", err)
	}
	if runErr != nil {
		return nil, fmt.Errorf("simulation failed: %w", runErr)
	}

	printed, err := ParseLog(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to parse output: %w", err)
	}
	recorded := rec.Events()
	digest := ir.LogDigest(printed)
	if err := h.store.FinishRun(ctx, runID, res.Summary(digest)); err != nil {
		return nil, fmt.Errorf("failed to finish run: %w", err)
	}

	result := NewResult(scenario.Name, scenario.Config)
	result.Outcome = res.Outcome
	result.DeadActor = res.DeadActor
	result.Meals = res.Meals
	result.Events = printed
	for _, ev := range printed {
		if ev.Kind == ir.KindDied {
			result.Deaths++
			result.DeathAtMs = ev.ElapsedMs
		}
	}

	h.logger.Info("scenario run",
		"scenario", scenario.Name,
		"outcome", res.Outcome,
		"lines", len(printed),
	)

	if err := h.checkRecording(ctx, runID, printed, recorded); err != nil {
		result.AddError(err.Error())
	}
	for _, err := range CheckLog(printed, scenario.Config) {
		result.AddError(err.Error())
	}
	for _, err := range scenario.Expect.Evaluate(result) {
		result.AddError(err.Error())
	}
	return result, nil
}

// checkRecording verifies the store holds exactly the printed lines.
func (h *Harness) checkRecording(ctx context.Context, runID string, printed, recorded []ir.Event) error {
	if len(printed) != len(recorded) {
		return fmt.Errorf("recording: printed %d lines, recorded %d", len(printed), len(recorded))
	}
	for i := range printed {
		if printed[i].Line() != recorded[i].Line() || printed[i].Seq != recorded[i].Seq {
			return fmt.Errorf("recording: line %d printed %q, recorded %q",
				i+1, printed[i].Line(), recorded[i].Line())
		}
	}

	state, err := h.store.GetRunState(ctx, runID)
	if err != nil {
		return fmt.Errorf("recording: %w", err)
	}
	if !state.DigestMatches || state.Gaps != 0 {
		return fmt.Errorf("recording: stored log does not match digest (gaps=%d)", state.Gaps)
	}
	return nil
}
