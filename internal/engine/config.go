package engine

import (
	"github.com/erkkaervice/philosophers/internal/ir"
)

// MaxActors bounds the ring size. Each actor is a goroutine plus a fork; the
// bound keeps a typo from spawning an unbounded number of them.
const MaxActors = 200

// ValidateConfig checks that every duration is strictly positive, that the
// actor count is in 1..MaxActors and that the quota, if given, is positive.
//
// The simulation refuses to run a config that fails validation; no state is
// constructed for it.
func ValidateConfig(cfg ir.Config) error {
	if cfg.Actors < 1 {
		return NewConfigError("actors", cfg.Actors, "actor count must be at least 1")
	}
	if cfg.Actors > MaxActors {
		return NewConfigError("actors", cfg.Actors, "actor count exceeds limit")
	}
	if cfg.DieMs <= 0 {
		return NewConfigError("die_ms", cfg.DieMs, "death deadline must be positive")
	}
	if cfg.EatMs <= 0 {
		return NewConfigError("eat_ms", cfg.EatMs, "eat duration must be positive")
	}
	if cfg.SleepMs <= 0 {
		return NewConfigError("sleep_ms", cfg.SleepMs, "rest duration must be positive")
	}
	if cfg.Quota < 0 {
		return NewConfigError("quota", cfg.Quota, "meal quota must be positive when given")
	}
	return nil
}
