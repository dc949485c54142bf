package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erkkaervice/philosophers/internal/ir"
)

// DefaultStagger is how long even seats wait before reaching for their
// first fork, so odd seats get the first pick.
const DefaultStagger = time.Millisecond

// Simulation is the shared state of one run: the fork ring, the actors, the
// StopFlag and the event Logger.
//
// A Simulation is single use. Build it with New, call Run once.
//
// Thread-safety model:
//   - Run(): call from exactly one goroutine; it becomes the monitor
//   - Stop(): safe from any goroutine
//   - Actors(), Ring(), Config(): safe from any goroutine
type Simulation struct {
	cfg    ir.Config
	clock  TimeSource
	stop   *StopFlag
	out    *Logger
	sink   EventSink
	ring   *Ring
	actors []*Actor
	quota  MealQuota
	order  AcquireOrder
	logger *slog.Logger

	dieMs   int64
	die     time.Duration
	eat     time.Duration
	rest    time.Duration
	think   time.Duration
	stagger time.Duration
	poll    time.Duration

	staggerEnabled bool

	ran   atomic.Bool
	start int64
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithClock replaces the monotonic clock. Used by tests.
func WithClock(c TimeSource) Option {
	return func(s *Simulation) {
		s.clock = c
	}
}

// WithSink attaches an EventSink that receives every printed event.
func WithSink(sink EventSink) Option {
	return func(s *Simulation) {
		s.sink = sink
	}
}

// WithPollInterval sets the monitor's scan interval.
//
// Default: 250µs (DefaultPollInterval)
func WithPollInterval(d time.Duration) Option {
	return func(s *Simulation) {
		if d > 0 {
			s.poll = d
		}
	}
}

// WithLogger sets the diagnostic logger. Event lines never go through it.
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStagger turns the start stagger and the odd-ring think pause on or off.
// Both are on by default.
func WithStagger(enabled bool) Option {
	return func(s *Simulation) {
		s.staggerEnabled = enabled
	}
}

// withOrder replaces the fork acquisition order.
func withOrder(order AcquireOrder) Option {
	return func(s *Simulation) {
		s.order = order
	}
}

// New validates cfg and builds the ring and actors. Event lines are written
// to out.
func New(cfg ir.Config, out io.Writer, opts ...Option) (*Simulation, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:            cfg,
		clock:          NewMonotonicClock(),
		stop:           NewStopFlag(),
		quota:          NewMealQuota(cfg.Quota),
		order:          Ordered,
		logger:         slog.Default(),
		poll:           DefaultPollInterval,
		staggerEnabled: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	ring, err := NewRing(cfg.Actors)
	if err != nil {
		return nil, fmt.Errorf("build ring: %w", err)
	}
	if cycle := WaitCycle(ring, s.order); cycle != nil {
		return nil, newDeadlockProneError(cycle)
	}
	s.ring = ring
	s.out = NewLogger(out, s.clock, s.stop, s.sink)

	s.dieMs = int64(cfg.DieMs)
	s.die = ms(cfg.DieMs)
	s.eat = ms(cfg.EatMs)
	s.rest = ms(cfg.SleepMs)
	if s.staggerEnabled {
		s.stagger = DefaultStagger
		s.think = thinkPause(cfg)
	}

	s.actors = make([]*Actor, cfg.Actors)
	for i := range s.actors {
		left, right := ring.Seat(i)
		s.actors[i] = &Actor{id: i + 1, left: left, right: right, sim: s}
	}
	return s, nil
}

// thinkPause keeps an odd ring fair. With an odd number of seats one
// neighbour pair is always waiting, so a seat that finished sleeping holds
// back until a full eat cycle of its neighbours could have passed.
func thinkPause(cfg ir.Config) time.Duration {
	if cfg.Actors%2 == 0 {
		return 0
	}
	if d := 2*cfg.EatMs - cfg.SleepMs; d > 0 {
		return ms(d)
	}
	return 0
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// Config returns the run's configuration.
func (s *Simulation) Config() ir.Config {
	return s.cfg
}

// Actors returns the actors in seat order.
func (s *Simulation) Actors() []*Actor {
	return s.actors
}

// Ring returns the fork ring.
func (s *Simulation) Ring() *Ring {
	return s.ring
}

// Stopped reports whether the StopFlag is set.
func (s *Simulation) Stopped() bool {
	return s.stop.IsSet()
}

// Stop halts the simulation from outside without a death line.
// Returns false if it had already stopped.
func (s *Simulation) Stop() bool {
	return s.out.Halt()
}

// Result describes a finished run.
type Result struct {
	Outcome   ir.Outcome
	DeadActor int
	ElapsedMs int64

	// Meals holds meals-eaten per actor, index 0 is actor 1.
	Meals []int

	// Lines is the number of event lines printed.
	Lines int64
}

// Summary converts the result to the stored form.
func (r *Result) Summary(digest string) ir.Summary {
	return ir.Summary{
		Outcome:   r.Outcome,
		DeadActor: r.DeadActor,
		ElapsedMs: r.ElapsedMs,
		Meals:     append([]int(nil), r.Meals...),
		Events:    int(r.Lines),
		Digest:    digest,
	}
}

// Run primes every actor with one shared start time, starts the actor
// goroutines, monitors them on the calling goroutine and joins them all
// before returning.
//
// Run returns once every actor has stopped. Cancelling ctx ends the run with
// OutcomeInterrupted. A write error on the event stream is returned along
// with the result.
func (s *Simulation) Run(ctx context.Context) (*Result, error) {
	if !s.ran.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRun
	}

	s.start = s.clock.NowMs()
	for _, a := range s.actors {
		a.prime(s.start)
	}
	s.out.begin(s.start)

	s.logger.Debug("simulation starting",
		"actors", s.cfg.Actors,
		"die_ms", s.cfg.DieMs,
		"eat_ms", s.cfg.EatMs,
		"sleep_ms", s.cfg.SleepMs,
		"quota", s.cfg.Quota,
	)

	var outcome ir.Outcome
	var dead int
	if len(s.actors) == 1 {
		outcome, dead = s.runSolo(ctx)
	} else {
		var wg sync.WaitGroup
		wg.Add(len(s.actors))
		for _, a := range s.actors {
			go a.run(&wg)
		}
		outcome, dead = newMonitor(s).Run(ctx)
		wg.Wait()
	}

	res := &Result{
		Outcome:   outcome,
		DeadActor: dead,
		ElapsedMs: s.clock.NowMs() - s.start,
		Meals:     make([]int, len(s.actors)),
		Lines:     s.out.Lines(),
	}
	for i, a := range s.actors {
		_, res.Meals[i] = a.Snapshot()
	}

	s.logger.Debug("simulation finished",
		"outcome", res.Outcome,
		"dead_actor", res.DeadActor,
		"elapsed_ms", res.ElapsedMs,
		"lines", res.Lines,
	)

	if err := s.out.Err(); err != nil {
		return res, fmt.Errorf("write event log: %w", err)
	}
	return res, nil
}

// runSolo handles a ring of one. There is no second fork, so the actor
// takes the only fork, waits out the death deadline and dies. The generic
// loop would block forever on the second acquisition.
func (s *Simulation) runSolo(ctx context.Context) (ir.Outcome, int) {
	a := s.actors[0]
	defer a.setState(StateStopped)

	a.setState(StateAcquiring)
	pair := newPair(a.id)
	pair.take(a.left)
	defer pair.Release()

	if !s.out.Log(a.id, ir.KindTookFork) {
		return ir.OutcomeInterrupted, 0
	}

	wait := s.die - ms(int(s.clock.NowMs()-s.start))
	if wait < 0 {
		wait = 0
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		if !s.out.Announce(a.id, ir.KindDied) {
			return ir.OutcomeInterrupted, 0
		}
		s.logger.Info("actor died", "actor", a.id, "meals", 0)
		return ir.OutcomeDied, a.id
	case <-ctx.Done():
		s.out.Halt()
		s.logger.Info("simulation interrupted", "reason", ctx.Err())
		return ir.OutcomeInterrupted, 0
	case <-s.stop.Done():
		return ir.OutcomeInterrupted, 0
	}
}

// pause waits d or until the simulation stops. Returns false if it stopped.
func (s *Simulation) pause(d time.Duration) bool {
	if d <= 0 {
		return !s.stop.IsSet()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return !s.stop.IsSet()
	case <-s.stop.Done():
		return false
	}
}
