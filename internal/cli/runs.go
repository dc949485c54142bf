package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/erkkaervice/philosophers/internal/ir"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database   string
	Unfinished bool
}

// RunListing is one row of the runs listing.
type RunListing struct {
	ID        string     `json:"id"`
	Config    ir.Config  `json:"config"`
	StartedAt time.Time  `json:"started_at"`
	Outcome   ir.Outcome `json:"outcome,omitempty"`
	DeadActor int        `json:"dead_actor,omitempty"`
	Events    int        `json:"events"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		Long: `List the runs recorded in a database, newest first.

With --unfinished only runs that never stored a summary are listed, such
as runs whose process was killed.

Examples:
  philo runs --db ./runs.db
  philo runs --db ./runs.db --unfinished
  philo runs --db ./runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().BoolVar(&opts.Unfinished, "unfinished", false, "only list runs without a summary")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var runs []ir.Run
	if opts.Unfinished {
		runs, err = st.FindUnfinishedRuns(ctx)
	} else {
		runs, err = st.ListRuns(ctx)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	listing := make([]RunListing, 0, len(runs))
	for _, r := range runs {
		row := RunListing{ID: r.ID, Config: r.Config, StartedAt: r.StartedAt}
		if r.Summary != nil {
			row.Outcome = r.Summary.Outcome
			row.DeadActor = r.Summary.DeadActor
			row.Events = r.Summary.Events
		}
		listing = append(listing, row)
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
		return f.Success(listing)
	}

	w := cmd.OutOrStdout()
	if len(listing) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tCONFIG\tOUTCOME\tEVENTS")
	for _, row := range listing {
		outcome := "-"
		if row.Outcome != "" {
			outcome = string(row.Outcome)
			if row.DeadActor != 0 {
				outcome = fmt.Sprintf("%s (%d)", outcome, row.DeadActor)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			truncateID(row.ID),
			row.StartedAt.UTC().Format(time.RFC3339),
			strings.Join(row.Config.Args(), " "),
			outcome,
			row.Events)
	}
	return tw.Flush()
}
