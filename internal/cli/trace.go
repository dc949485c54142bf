package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/erkkaervice/philosophers/internal/ir"
	"github.com/erkkaervice/philosophers/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Actor    int // optional - filter to one actor's lines
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	RunID     string      `json:"run_id"`
	Config    ir.Config   `json:"config"`
	StartedAt time.Time   `json:"started_at"`
	Summary   *ir.Summary `json:"summary,omitempty"`
	Events    []ir.Event  `json:"events"`
	Stats     TraceStats  `json:"stats"`
}

// TraceStats holds summary statistics for the recording.
type TraceStats struct {
	TotalEvents   int   `json:"total_events"`
	LastSeq       int64 `json:"last_seq"`
	Gaps          int   `json:"gaps"`
	IsComplete    bool  `json:"is_complete"`
	DigestMatches bool  `json:"digest_matches"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [run-id]",
		Short: "Print a recorded run",
		Long: `Print a run recorded with --db.

Shows the run configuration and outcome, followed by the event lines as
they were printed. Without a run id the most recent run is shown.

The recording is checked against the digest stored when the run finished:
a missing or altered line is reported as a digest mismatch.

Examples:
  philo trace --db ./runs.db
  philo trace 0190a1b2-... --db ./runs.db
  philo trace --db ./runs.db --actor 3
  philo trace --db ./runs.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runTrace(opts, runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.Actor, "actor", 0, "only show lines of this actor")

	return cmd
}

func runTrace(opts *TraceOptions, runID string, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if runID == "" {
		latest, err := st.LatestRun(ctx)
		if errors.Is(err, store.ErrRunNotFound) {
			return NewExitError(ExitCommandError, fmt.Sprintf("no runs recorded in %s", opts.Database))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to find latest run", err)
		}
		runID = latest.ID
	}

	state, err := st.GetRunState(ctx, runID)
	if errors.Is(err, store.ErrRunNotFound) {
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", runID))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to get run state", err)
	}

	result := TraceResult{
		RunID:     state.Run.ID,
		Config:    state.Run.Config,
		StartedAt: state.Run.StartedAt,
		Summary:   state.Run.Summary,
		Events:    filterEvents(state.Events, opts.Actor),
		Stats: TraceStats{
			TotalEvents:   len(state.Events),
			LastSeq:       state.LastSeq,
			Gaps:          state.Gaps,
			IsComplete:    state.Finished,
			DigestMatches: state.DigestMatches,
		},
	}

	// Output results
	if opts.Format == "json" {
		return outputTraceJSON(cmd, result)
	}

	return outputTraceText(cmd, result, opts.Verbose)
}

// openExisting opens a database that must already exist. store.Open would
// otherwise create an empty file for a mistyped path.
func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// filterEvents keeps the lines of one actor. actor 0 keeps everything.
func filterEvents(events []ir.Event, actor int) []ir.Event {
	if actor == 0 {
		return events
	}
	filtered := []ir.Event{}
	for _, ev := range events {
		if ev.Actor == actor {
			filtered = append(filtered, ev)
		}
	}
	return filtered
}

// outputTraceJSON outputs the trace result as JSON.
func outputTraceJSON(cmd *cobra.Command, result TraceResult) error {
	f := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
	return f.Success(result)
}

// outputTraceText outputs the trace result as text.
func outputTraceText(cmd *cobra.Command, result TraceResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Trace for Run: %s\n", result.RunID)
	fmt.Fprintf(w, "Config: %s\n", strings.Join(result.Config.Args(), " "))
	fmt.Fprintf(w, "Started: %s\n", result.StartedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Status: %s\n", completeStatus(result.Summary))
	fmt.Fprintln(w)

	// Events section
	fmt.Fprintln(w, "=== Events ===")
	if len(result.Events) == 0 {
		fmt.Fprintln(w, "  (no events)")
	} else {
		for _, ev := range result.Events {
			formatEvent(w, ev, verbose)
		}
	}
	fmt.Fprintln(w)

	if result.Summary != nil {
		fmt.Fprintln(w, "=== Meals ===")
		for i, m := range result.Summary.Meals {
			fmt.Fprintf(w, "  %d: %d\n", i+1, m)
		}
		fmt.Fprintln(w)
	}

	// Stats section
	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Events: %d\n", result.Stats.TotalEvents)
	fmt.Fprintf(w, "  Gaps:         %d\n", result.Stats.Gaps)
	fmt.Fprintf(w, "  Digest:       %s\n", digestStatus(result.Stats))

	return nil
}

// formatEvent prints one line as it was originally printed.
func formatEvent(w io.Writer, ev ir.Event, verbose bool) {
	if verbose {
		fmt.Fprintf(w, "  [%d] %s\n", ev.Seq, ev.Line())
		return
	}
	fmt.Fprintf(w, "  %s\n", ev.Line())
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}

// completeStatus returns a human-readable completion status.
func completeStatus(sum *ir.Summary) string {
	if sum == nil {
		return "Incomplete (no summary)"
	}
	if sum.Outcome == ir.OutcomeDied {
		return fmt.Sprintf("%s: actor %d (ran %dms)", sum.Outcome, sum.DeadActor, sum.ElapsedMs)
	}
	return fmt.Sprintf("%s (ran %dms)", sum.Outcome, sum.ElapsedMs)
}

func digestStatus(stats TraceStats) string {
	switch {
	case !stats.IsComplete:
		return "unavailable"
	case stats.DigestMatches:
		return "ok"
	default:
		return "MISMATCH"
	}
}
