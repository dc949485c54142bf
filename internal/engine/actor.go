package engine

import (
	"sync"
	"sync/atomic"

	"github.com/erkkaervice/philosophers/internal/ir"
)

// State is the position of an actor in its eat/sleep/think cycle.
type State int32

const (
	StateIdle State = iota
	StateAcquiring
	StateEating
	StateReleasing
	StateResting
	StateReflecting
	StateStopped
)

var stateNames = [...]string{
	StateIdle:       "idle",
	StateAcquiring:  "acquiring",
	StateEating:     "eating",
	StateReleasing:  "releasing",
	StateResting:    "resting",
	StateReflecting: "reflecting",
	StateStopped:    "stopped",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Actor is one philosopher seated between two forks.
//
// lastMeal and meals are written by the actor's own goroutine and read by
// the monitor; both are only touched under mealMu, which is separate from the
// StopFlag lock so the eat path does not contend with death checks.
//
// Lock order: mealMu, then the Logger's output lock, then the StopFlag lock.
// The monitor never holds mealMu while logging.
type Actor struct {
	id    int
	left  *Fork
	right *Fork
	sim   *Simulation

	mealMu   sync.Mutex
	lastMeal int64
	meals    int

	state atomic.Int32
}

// ID returns the actor's 1-based identity.
func (a *Actor) ID() int {
	return a.id
}

// Forks returns the actor's left and right forks.
func (a *Actor) Forks() (left, right *Fork) {
	return a.left, a.right
}

// State returns the actor's current state.
func (a *Actor) State() State {
	return State(a.state.Load())
}

func (a *Actor) setState(s State) {
	a.state.Store(int32(s))
}

// Snapshot returns last-meal and meals-eaten as one consistent read.
func (a *Actor) Snapshot() (lastMeal int64, meals int) {
	a.mealMu.Lock()
	defer a.mealMu.Unlock()
	return a.lastMeal, a.meals
}

func (a *Actor) prime(start int64) {
	a.mealMu.Lock()
	defer a.mealMu.Unlock()
	a.lastMeal = start
	a.meals = 0
}

// run is the actor goroutine. It loops until the StopFlag is observed or
// the actor has eaten its quota, then marks itself stopped.
func (a *Actor) run(wg *sync.WaitGroup) {
	defer wg.Done()
	defer a.setState(StateStopped)

	s := a.sim
	if a.id%2 == 0 && !s.pause(s.stagger) {
		return
	}

	for !s.stop.IsSet() {
		a.setState(StateAcquiring)
		pair, ok := a.acquire()
		if !ok {
			return
		}

		a.setState(StateEating)
		ate := a.eat()

		a.setState(StateReleasing)
		pair.Release()
		if !ate {
			return
		}

		// A sated actor leaves right away. Only the monitor decides the
		// global stop.
		if a.sated() {
			s.logger.Debug("actor sated", "actor", a.id, "meals", s.quota.Limit())
			return
		}

		a.setState(StateResting)
		if !s.out.Log(a.id, ir.KindSleeping) || !s.pause(s.rest) {
			return
		}

		a.setState(StateReflecting)
		if !s.out.Log(a.id, ir.KindThinking) || !s.pause(s.think) {
			return
		}

		a.setState(StateIdle)
	}
}

// acquire takes both forks in the simulation's acquisition order.
//
// The StopFlag is re-checked (inside Log) after each fork. If it is set the
// forks taken so far are released and acquire fails, which bounds how long a
// doomed actor can hold a fork during shutdown.
func (a *Actor) acquire() (*Pair, bool) {
	s := a.sim
	first, second := s.order(a.left, a.right)
	pair := newPair(a.id)

	pair.take(first)
	if !s.out.Log(a.id, ir.KindTookFork) {
		pair.Release()
		return nil, false
	}

	pair.take(second)
	if !s.out.Log(a.id, ir.KindTookFork) {
		pair.Release()
		return nil, false
	}
	return pair, true
}

// eat records the meal and waits out the eat duration.
//
// The "is eating" line and the meal record happen together under mealMu,
// so the monitor sees either neither or both. Returns false if the
// simulation stopped before or during the meal.
func (a *Actor) eat() bool {
	s := a.sim

	a.mealMu.Lock()
	if err := s.quota.Check(a.id, a.meals); err != nil {
		a.mealMu.Unlock()
		s.logger.Error("meal refused", "actor", a.id, "error", err)
		return false
	}
	if !s.out.Log(a.id, ir.KindEating) {
		a.mealMu.Unlock()
		return false
	}
	if now := s.clock.NowMs(); now > a.lastMeal {
		a.lastMeal = now
	}
	a.meals++
	a.mealMu.Unlock()

	return s.pause(s.eat)
}

func (a *Actor) sated() bool {
	a.mealMu.Lock()
	defer a.mealMu.Unlock()
	return a.sim.quota.Sated(a.meals)
}
