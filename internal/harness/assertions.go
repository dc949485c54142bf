package harness

import (
	"fmt"
	"strings"

	"github.com/erkkaervice/philosophers/internal/ir"
)

// Log property names reported in AssertionError.Property.
const (
	PropElapsedMonotonic = "elapsed_monotonic"
	PropActorRange       = "actor_range"
	PropSingleDeath      = "single_death"
	PropNoPostMortem     = "no_post_mortem"
	PropForksBeforeEat   = "forks_before_eat"
	PropExclusiveMeals   = "exclusive_meals"
	PropQuota            = "quota"
	PropSatedExit        = "sated_exit"
)

// Expectation names reported in AssertionError.Property.
const (
	ExpectOutcome   = "outcome"
	ExpectDeaths    = "deaths"
	ExpectDiedActor = "died_actor"
	ExpectDeathAt   = "death_at_ms"
	ExpectMealsEach = "meals_each"
	ExpectMinMeals  = "min_meals"
)

// AssertionError is returned when a log property or an expectation fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Property string    // Property or expectation name
	Expected string    // Human-readable expected outcome
	Actual   string    // Human-readable actual outcome
	Event    *ir.Event // Offending line, nil for whole-run expectations
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Property)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	if e.Event != nil {
		fmt.Fprintf(&buf, "\n  Line %d: %s", e.Event.Seq, e.Event.Line())
	}
	return buf.String()
}

func violation(prop string, ev ir.Event, expected, actual string, args ...any) *AssertionError {
	return &AssertionError{
		Property: prop,
		Expected: expected,
		Actual:   fmt.Sprintf(actual, args...),
		Event:    &ev,
	}
}

// CheckLog verifies the properties every correct log of cfg has and returns
// one error per violation, in log order. An empty result means the log is
// consistent.
//
// Neighbouring actors share a fork, and a meal holds its forks for at least
// eat_ms, so a neighbour's next meal cannot be printed less than eat_ms
// after the previous one.
func CheckLog(events []ir.Event, cfg ir.Config) []error {
	var errs []error

	var prevElapsed int64
	deathSeen := false
	forks := make(map[int]int)
	meals := make(map[int]int)
	lastEat := make(map[int]int64)

	for _, ev := range events {
		if ev.ElapsedMs < prevElapsed {
			errs = append(errs, violation(PropElapsedMonotonic, ev,
				fmt.Sprintf("elapsed >= %d", prevElapsed), "elapsed %d", ev.ElapsedMs))
		}
		prevElapsed = ev.ElapsedMs

		if deathSeen {
			if ev.Kind == ir.KindDied {
				errs = append(errs, violation(PropSingleDeath, ev,
					"at most one death", "second death of actor %d", ev.Actor))
			} else {
				errs = append(errs, violation(PropNoPostMortem, ev,
					"no line after the death", "actor %d printed %q", ev.Actor, ev.Kind.Message()))
			}
			continue
		}

		if ev.Actor < 1 || ev.Actor > cfg.Actors {
			errs = append(errs, violation(PropActorRange, ev,
				fmt.Sprintf("actor in 1..%d", cfg.Actors), "actor %d", ev.Actor))
			continue
		}

		if cfg.HasQuota() && meals[ev.Actor] >= cfg.Quota && ev.Kind != ir.KindDied {
			errs = append(errs, violation(PropSatedExit, ev,
				"no line after the last meal", "actor %d printed %q after %d meals",
				ev.Actor, ev.Kind.Message(), meals[ev.Actor]))
		}

		switch ev.Kind {
		case ir.KindDied:
			deathSeen = true

		case ir.KindTookFork:
			forks[ev.Actor]++
			if forks[ev.Actor] > 2 {
				errs = append(errs, violation(PropForksBeforeEat, ev,
					"at most two forks per meal", "actor %d took fork %d", ev.Actor, forks[ev.Actor]))
			}

		case ir.KindEating:
			if forks[ev.Actor] != 2 {
				errs = append(errs, violation(PropForksBeforeEat, ev,
					"two forks before eating", "actor %d ate holding %d", ev.Actor, forks[ev.Actor]))
			}
			forks[ev.Actor] = 0

			for _, n := range neighbours(ev.Actor, cfg.Actors) {
				if at, ok := lastEat[n]; ok && ev.ElapsedMs < at+int64(cfg.EatMs) {
					errs = append(errs, violation(PropExclusiveMeals, ev,
						fmt.Sprintf("actor %d eats at >= %d", ev.Actor, at+int64(cfg.EatMs)),
						"actor %d ate at %d while neighbour %d ate since %d",
						ev.Actor, ev.ElapsedMs, n, at))
				}
			}
			lastEat[ev.Actor] = ev.ElapsedMs

			meals[ev.Actor]++
			if cfg.HasQuota() && meals[ev.Actor] > cfg.Quota {
				errs = append(errs, violation(PropQuota, ev,
					fmt.Sprintf("at most %d meals", cfg.Quota), "meal %d of actor %d", meals[ev.Actor], ev.Actor))
			}
		}
	}
	return errs
}

// neighbours returns the actors sharing a fork with actor in a ring of n.
func neighbours(actor, n int) []int {
	switch n {
	case 1:
		return nil
	case 2:
		return []int{actor%2 + 1}
	}
	left := actor - 1
	if left < 1 {
		left = n
	}
	right := actor%n + 1
	return []int{left, right}
}

// Evaluate checks the expectations against a finished run and returns one
// error per failed expectation.
func (e Expectations) Evaluate(r *Result) []error {
	var errs []error

	fail := func(prop, expected, actual string) {
		errs = append(errs, &AssertionError{Property: prop, Expected: expected, Actual: actual})
	}

	if e.Outcome != "" && r.Outcome != e.Outcome {
		fail(ExpectOutcome, string(e.Outcome), string(r.Outcome))
	}

	if e.Deaths != nil && r.Deaths != *e.Deaths {
		fail(ExpectDeaths, fmt.Sprintf("%d deaths", *e.Deaths), fmt.Sprintf("%d deaths", r.Deaths))
	}

	if e.DiedActor != 0 && r.DeadActor != e.DiedActor {
		fail(ExpectDiedActor, fmt.Sprintf("actor %d dies", e.DiedActor), diedDesc(r))
	}

	if e.DeathAtMs != nil {
		switch {
		case r.Deaths == 0:
			fail(ExpectDeathAt, fmt.Sprintf("death within %d..%d ms", e.DeathAtMs.Min, e.DeathAtMs.Max), "no death")
		case !e.DeathAtMs.Contains(r.DeathAtMs):
			fail(ExpectDeathAt, fmt.Sprintf("death within %d..%d ms", e.DeathAtMs.Min, e.DeathAtMs.Max),
				fmt.Sprintf("death at %d ms", r.DeathAtMs))
		}
	}

	for i, meals := range r.Meals {
		if e.MealsEach != nil && meals != *e.MealsEach {
			fail(ExpectMealsEach, fmt.Sprintf("actor %d ate %d meals", i+1, *e.MealsEach), fmt.Sprintf("%d meals", meals))
		}
		if meals < e.MinMeals {
			fail(ExpectMinMeals, fmt.Sprintf("actor %d ate at least %d meals", i+1, e.MinMeals), fmt.Sprintf("%d meals", meals))
		}
	}
	return errs
}

func diedDesc(r *Result) string {
	if r.Deaths == 0 {
		return "no death"
	}
	return fmt.Sprintf("actor %d died", r.DeadActor)
}
