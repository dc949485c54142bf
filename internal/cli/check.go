package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/erkkaervice/philosophers/internal/harness"
	"github.com/erkkaervice/philosophers/internal/ir"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	LogFile string // "" or "-" reads stdin
}

// CheckResult holds the outcome of checking one log.
type CheckResult struct {
	Config     ir.Config `json:"config"`
	Lines      int       `json:"lines"`
	Deaths     int       `json:"deaths"`
	Valid      bool      `json:"valid"`
	Violations []string  `json:"violations,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <number_of_philosophers> <time_to_die> <time_to_eat> <time_to_sleep> [number_of_times_each_philosopher_must_eat]",
		Short: "Verify a captured simulation log",
		Long: `Verify a log printed by a simulation run with the same arguments.

The log is read from stdin unless --log names a file. Every line must be
"<elapsed_ms> <philosopher> <message>" and the log as a whole must show:
non-decreasing times, philosopher ids in range, at most one death with
nothing printed after it, two forks taken before every meal, neighbours
never eating at the same time and no philosopher eating past the quota.

Exit codes:
  0 - Log is valid
  1 - One or more properties violated
  2 - Command error (bad arguments, unreadable or malformed log)

Examples:
  philo 5 800 200 200 7 | philo check 5 800 200 200 7
  philo check 4 410 200 200 --log run.log`,
		Args:          cobra.RangeArgs(4, 5),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.LogFile, "log", "", "log file to check (default stdin)")

	return cmd
}

func runCheck(opts *CheckOptions, args []string, cmd *cobra.Command) error {
	cfg, err := parseConfig(args)
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if opts.LogFile != "" && opts.LogFile != "-" {
		f, err := os.Open(opts.LogFile)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open log", err)
		}
		defer f.Close()
		r = f
	}

	events, err := harness.ParseLog(r)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to parse log", err)
	}

	result := CheckResult{Config: cfg, Lines: len(events), Valid: true}
	for _, ev := range events {
		if ev.Kind == ir.KindDied {
			result.Deaths++
		}
	}
	for _, v := range harness.CheckLog(events, cfg) {
		result.Valid = false
		result.Violations = append(result.Violations, v.Error())
	}

	if opts.Format == "json" {
		return outputCheckJSON(cmd, result)
	}
	return outputCheckText(cmd, result)
}

// outputCheckJSON outputs the check result as JSON.
func outputCheckJSON(cmd *cobra.Command, result CheckResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if !result.Valid {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_LOG_INVALID",
			Message: fmt.Sprintf("%d violation(s)", len(result.Violations)),
		}
	}

	f := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
	if err := f.Respond(response); err != nil {
		return err
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d violation(s)", len(result.Violations)))
	}
	return nil
}

// outputCheckText outputs the check result as text.
func outputCheckText(cmd *cobra.Command, result CheckResult) error {
	w := cmd.OutOrStdout()

	if result.Valid {
		fmt.Fprintf(w, "✓ %d lines, %d death(s), all properties hold\n", result.Lines, result.Deaths)
		return nil
	}

	fmt.Fprintf(w, "✗ %d lines, %d violation(s)\n", result.Lines, len(result.Violations))
	for _, v := range result.Violations {
		fmt.Fprintf(w, "\n%s\n", v)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d violation(s)", len(result.Violations)))
}
