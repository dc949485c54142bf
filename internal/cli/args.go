package cli

import (
	"fmt"
	"math"
	"strconv"

	"github.com/erkkaervice/philosophers/internal/engine"
	"github.com/erkkaervice/philosophers/internal/ir"
)

// UsageLine is printed with every argument error.
const UsageLine = "Usage: philo <number_of_philosophers> <time_to_die> <time_to_eat> <time_to_sleep> [number_of_times_each_philosopher_must_eat]"

// argNames names the positional arguments in order, for error messages.
var argNames = []string{
	"number_of_philosophers",
	"time_to_die",
	"time_to_eat",
	"time_to_sleep",
	"number_of_times_each_philosopher_must_eat",
}

// usageError wraps an argument problem with the usage line and exit code 2.
func usageError(format string, args ...any) *ExitError {
	return NewExitError(ExitCommandError, fmt.Sprintf(format, args...)+"\n"+UsageLine)
}

// checkArgCount is a cobra.PositionalArgs for the simulation arguments.
func checkArgCount(args []string) error {
	if len(args) < 4 || len(args) > 5 {
		return usageError("expected 4 or 5 arguments, got %d", len(args))
	}
	return nil
}

// parseConfig converts the positional arguments to a validated Config.
func parseConfig(args []string) (ir.Config, error) {
	if err := checkArgCount(args); err != nil {
		return ir.Config{}, err
	}

	values := make([]int, len(args))
	for i, arg := range args {
		n, err := parsePositive(arg)
		if err != nil {
			return ir.Config{}, usageError("invalid %s %q: %v", argNames[i], arg, err)
		}
		values[i] = n
	}

	cfg := ir.Config{
		Actors:  values[0],
		DieMs:   values[1],
		EatMs:   values[2],
		SleepMs: values[3],
	}
	if len(values) == 5 {
		cfg.Quota = values[4]
	}

	if err := engine.ValidateConfig(cfg); err != nil {
		return ir.Config{}, usageError("%v", err)
	}
	return cfg, nil
}

// parsePositive accepts decimal digits only (no sign, no spaces) with a
// value in 1..MaxInt32.
func parsePositive(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("must contain digits only")
		}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n > math.MaxInt32 {
		return 0, fmt.Errorf("must be at most %d", math.MaxInt32)
	}
	if n < 1 {
		return 0, fmt.Errorf("must be at least 1")
	}
	return int(n), nil
}
