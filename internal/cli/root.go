package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erkkaervice/philosophers/internal/engine"
	"github.com/erkkaervice/philosophers/internal/ir"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command. Run with positional arguments it
// runs a simulation; the subcommands inspect recordings and logs.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCommand()
	return cmd
}

func newRootCommand() (*cobra.Command, *RootOptions) {
	opts := &RootOptions{}
	simOpts := &SimulateOptions{RootOptions: opts}

	cmd := &cobra.Command{
		Use:   "philo <number_of_philosophers> <time_to_die> <time_to_eat> <time_to_sleep> [number_of_times_each_philosopher_must_eat]",
		Short: "Dining philosophers simulation",
		Long: `Run the dining philosophers simulation.

N philosophers sit around a table with one fork between each pair. A
philosopher needs both neighbouring forks to eat, then sleeps, then thinks.
One that does not start a meal within time_to_die milliseconds of its
previous one dies and the simulation stops. With the optional fifth
argument the simulation also stops once every philosopher has eaten that
many times.

Every state change is printed as "<elapsed_ms> <philosopher> <message>".

Examples:
  philo 5 800 200 200
  philo 5 800 200 200 7 --db ./runs.db
  philo 4 410 200 200 --timeout 10s
  philo 4 410 200 200 | philo check 4 410 200 200`,
		Args: func(cmd *cobra.Command, args []string) error {
			return checkArgCount(args)
		},
		Version:       ir.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(simOpts, args, cmd)
		},
	}

	// Flag errors (unknown flag, a negative number read as a flag) are
	// argument errors too.
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		if c != cmd {
			return WrapExitError(ExitCommandError, "invalid flag", err)
		}
		return usageError("%v", err)
	})

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Simulation flags
	cmd.Flags().StringVar(&simOpts.Database, "db", "", "record the run into this SQLite database")
	cmd.Flags().DurationVar(&simOpts.Timeout, "timeout", 0, "stop the run after this long (0 = no limit)")
	cmd.Flags().DurationVar(&simOpts.Poll, "poll", engine.DefaultPollInterval, "monitor scan interval")
	cmd.Flags().BoolVar(&simOpts.NoStagger, "no-stagger", false, "disable the start stagger and odd-table think pause")

	// Add subcommands
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd, opts
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Execute runs the root command with the process arguments and reports
// any error on stderr. Map the returned error with GetExitCode.
func Execute() error {
	cmd, opts := newRootCommand()
	err := cmd.Execute()
	if err != nil {
		ReportError(opts, cmd.ErrOrStderr(), err)
	}
	return err
}
