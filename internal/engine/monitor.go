package engine

import (
	"context"
	"time"

	"github.com/erkkaervice/philosophers/internal/ir"
)

// DefaultPollInterval is how long the monitor yields between scans.
// It is small against any realistic death deadline.
const DefaultPollInterval = 250 * time.Microsecond

// Monitor watches every actor for starvation and, with a quota, for
// completion. It is the only component that stops a multi-actor run.
type Monitor struct {
	sim      *Simulation
	interval time.Duration
}

func newMonitor(s *Simulation) *Monitor {
	return &Monitor{sim: s, interval: s.poll}
}

// Run scans until the simulation stops and returns how it ended and, for a
// death, which actor died.
//
// Cancelling ctx halts the simulation with OutcomeInterrupted.
func (m *Monitor) Run(ctx context.Context) (ir.Outcome, int) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if outcome, actor, done := m.scan(); done {
			return outcome, actor
		}

		select {
		case <-ctx.Done():
			m.sim.out.Halt()
			m.sim.logger.Info("simulation interrupted", "reason", ctx.Err())
			return ir.OutcomeInterrupted, 0
		case <-ticker.C:
		}
	}
}

// scan makes one pass over the actors in ring order.
//
// A sated actor has left the table and cannot starve. The quota is only
// evaluated after a full pass found no death.
func (m *Monitor) scan() (ir.Outcome, int, bool) {
	s := m.sim
	sated := 0

	for _, a := range s.actors {
		if s.stop.IsSet() {
			return ir.OutcomeInterrupted, 0, true
		}

		lastMeal, meals := a.Snapshot()
		if s.quota.Sated(meals) {
			sated++
			continue
		}

		if s.clock.NowMs()-lastMeal >= s.dieMs {
			if !s.out.Announce(a.id, ir.KindDied) {
				return ir.OutcomeInterrupted, 0, true
			}
			s.logger.Info("actor died", "actor", a.id, "meals", meals)
			return ir.OutcomeDied, a.id, true
		}
	}

	if s.quota.Enabled() && sated == len(s.actors) {
		if !s.out.Halt() {
			return ir.OutcomeInterrupted, 0, true
		}
		s.logger.Info("meal quota reached", "quota", s.quota.Limit())
		return ir.OutcomeCompleted, 0, true
	}
	return "", 0, false
}
