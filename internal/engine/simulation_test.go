package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erkkaervice/philosophers/internal/ir"
	"github.com/erkkaervice/philosophers/internal/testutil"
)

type runOutput struct {
	result *Result
	lines  []string
	events []ir.Event
}

func runSimulation(t *testing.T, cfg ir.Config, timeout time.Duration, opts ...Option) runOutput {
	t.Helper()

	var buf testutil.SyncBuffer
	capture := testutil.NewEventCapture()
	opts = append([]Option{WithSink(capture), WithLogger(discardLogger)}, opts...)

	s, err := New(cfg, &buf, opts...)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res, err := s.Run(ctx)
	require.NoError(t, err)
	require.NotNil(t, res)

	for _, a := range s.Actors() {
		assert.Equal(t, StateStopped, a.State(), "actor %d not joined", a.ID())
	}
	for i := 0; i < s.Ring().Len(); i++ {
		assert.Zero(t, s.Ring().Fork(i).Holder(), "fork %d still held", i)
	}

	out := strings.TrimSuffix(buf.String(), "\n")
	var lines []string
	if out != "" {
		lines = strings.Split(out, "\n")
	}
	return runOutput{result: res, lines: lines, events: capture.Events()}
}

// assertLogInvariants checks what must hold for any run: elapsed times never
// go backwards, at most one death, and nothing after it.
func assertLogInvariants(t *testing.T, out runOutput) {
	t.Helper()

	require.Len(t, out.events, len(out.lines))
	assert.Equal(t, int64(len(out.lines)), out.result.Lines)

	var prev int64
	deaths := 0
	for i, line := range out.lines {
		ev, err := ir.ParseLine(line)
		require.NoError(t, err)
		assert.Equal(t, out.events[i].Line(), line)
		assert.GreaterOrEqual(t, ev.ElapsedMs, prev, "line %d goes back in time", i+1)
		prev = ev.ElapsedMs

		if ev.Kind == ir.KindDied {
			deaths++
			assert.Equal(t, len(out.lines)-1, i, "lines printed after the death")
		}
	}
	assert.LessOrEqual(t, deaths, 1)
}

func TestSimulation_SingleActorDies(t *testing.T) {
	out := runSimulation(t, ir.Config{Actors: 1, DieMs: 200, EatMs: 100, SleepMs: 100}, 5*time.Second)
	assertLogInvariants(t, out)

	require.Len(t, out.lines, 2)
	assert.Equal(t, "1 has taken a fork", strings.SplitN(out.lines[0], " ", 2)[1])

	death, err := ir.ParseLine(out.lines[1])
	require.NoError(t, err)
	assert.Equal(t, ir.KindDied, death.Kind)
	assert.Equal(t, 1, death.Actor)
	assert.GreaterOrEqual(t, death.ElapsedMs, int64(200))
	assert.Less(t, death.ElapsedMs, int64(260))

	assert.Equal(t, ir.OutcomeDied, out.result.Outcome)
	assert.Equal(t, 1, out.result.DeadActor)
	assert.Equal(t, []int{0}, out.result.Meals)
}

func TestSimulation_CertainDeath(t *testing.T) {
	// Eating outlasts the deadline, so a neighbour waiting for a fork starves.
	out := runSimulation(t, ir.Config{Actors: 2, DieMs: 60, EatMs: 200, SleepMs: 50}, 5*time.Second)
	assertLogInvariants(t, out)

	assert.Equal(t, ir.OutcomeDied, out.result.Outcome)
	require.NotEmpty(t, out.lines)

	death, err := ir.ParseLine(out.lines[len(out.lines)-1])
	require.NoError(t, err)
	assert.Equal(t, ir.KindDied, death.Kind)
	assert.Equal(t, out.result.DeadActor, death.Actor)
	assert.GreaterOrEqual(t, death.ElapsedMs, int64(60))
	assert.Less(t, death.ElapsedMs, int64(120), "death reported well within the deadline")
}

func TestSimulation_QuotaCompletes(t *testing.T) {
	if testing.Short() {
		t.Skip("timing-dependent run of several seconds")
	}

	cfg := ir.Config{Actors: 5, DieMs: 800, EatMs: 200, SleepMs: 200, Quota: 7}
	out := runSimulation(t, cfg, 20*time.Second)
	assertLogInvariants(t, out)

	assert.Equal(t, ir.OutcomeCompleted, out.result.Outcome)
	assert.Zero(t, out.result.DeadActor)
	assert.Equal(t, []int{7, 7, 7, 7, 7}, out.result.Meals)

	eats := make(map[int]int)
	for _, ev := range out.events {
		assert.NotEqual(t, ir.KindDied, ev.Kind)
		if ev.Kind == ir.KindEating {
			eats[ev.Actor]++
		}
	}
	for actor := 1; actor <= 5; actor++ {
		assert.Equal(t, 7, eats[actor], "actor %d meals in log", actor)
	}
}

func TestSimulation_EvenRingSurvives(t *testing.T) {
	if testing.Short() {
		t.Skip("timing-dependent run of several seconds")
	}

	cfg := ir.Config{Actors: 4, DieMs: 410, EatMs: 200, SleepMs: 200}
	out := runSimulation(t, cfg, 2*time.Second)
	assertLogInvariants(t, out)

	assert.Equal(t, ir.OutcomeInterrupted, out.result.Outcome)
	for i, meals := range out.result.Meals {
		assert.GreaterOrEqual(t, meals, 4, "actor %d starved", i+1)
	}
}

func TestSimulation_DeadlockFree(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 7, 10} {
		n := n
		t.Run(fmt.Sprintf("actors=%d", n), func(t *testing.T) {
			t.Parallel()
			cfg := ir.Config{Actors: n, DieMs: 400, EatMs: 10, SleepMs: 10}
			out := runSimulation(t, cfg, 400*time.Millisecond)
			assertLogInvariants(t, out)

			assert.Equal(t, ir.OutcomeInterrupted, out.result.Outcome)
			for i, meals := range out.result.Meals {
				assert.Positive(t, meals, "actor %d never ate", i+1)
			}
		})
	}
}

func TestSimulation_EatingFollowsTwoForks(t *testing.T) {
	out := runSimulation(t, ir.Config{Actors: 3, DieMs: 400, EatMs: 10, SleepMs: 10, Quota: 3}, 5*time.Second)
	assertLogInvariants(t, out)
	require.Equal(t, ir.OutcomeCompleted, out.result.Outcome)

	forks := make(map[int]int)
	for _, ev := range out.events {
		switch ev.Kind {
		case ir.KindTookFork:
			forks[ev.Actor]++
		case ir.KindEating:
			assert.Equal(t, 2, forks[ev.Actor], "actor %d ate without two forks", ev.Actor)
			forks[ev.Actor] = 0
		}
	}
}

func TestSimulation_StopFromOutside(t *testing.T) {
	var buf testutil.SyncBuffer
	s, err := New(ir.Config{Actors: 3, DieMs: 10000, EatMs: 10, SleepMs: 10}, &buf, WithLogger(discardLogger))
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		s.Stop()
	}()

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ir.OutcomeInterrupted, res.Outcome)
	assert.True(t, s.Stopped())
	assert.False(t, s.Stop(), "already stopped")
	assert.NotContains(t, buf.String(), "died")
}

func TestSimulation_RunTwice(t *testing.T) {
	var buf testutil.SyncBuffer
	s, err := New(ir.Config{Actors: 1, DieMs: 20, EatMs: 10, SleepMs: 10}, &buf, WithLogger(discardLogger))
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRun)
}

func TestSimulation_InvalidConfig(t *testing.T) {
	var buf testutil.SyncBuffer
	_, err := New(ir.Config{Actors: 0, DieMs: 200, EatMs: 100, SleepMs: 100}, &buf)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
	assert.Empty(t, buf.String())
}

func TestSimulation_SoloInterrupted(t *testing.T) {
	out := runSimulation(t, ir.Config{Actors: 1, DieMs: 10000, EatMs: 100, SleepMs: 100}, 50*time.Millisecond)
	assertLogInvariants(t, out)

	assert.Equal(t, ir.OutcomeInterrupted, out.result.Outcome)
	assert.Len(t, out.lines, 1)
}

func TestThinkPause(t *testing.T) {
	assert.Zero(t, thinkPause(ir.Config{Actors: 4, EatMs: 200, SleepMs: 100}), "even rings need no pause")
	assert.Equal(t, 200*time.Millisecond, thinkPause(ir.Config{Actors: 5, EatMs: 200, SleepMs: 200}))
	assert.Zero(t, thinkPause(ir.Config{Actors: 5, EatMs: 100, SleepMs: 300}))
}

func TestSimulation_WithoutStagger(t *testing.T) {
	var buf testutil.SyncBuffer
	s, err := New(ir.Config{Actors: 5, DieMs: 800, EatMs: 200, SleepMs: 200}, &buf, WithStagger(false))
	require.NoError(t, err)
	assert.Zero(t, s.stagger)
	assert.Zero(t, s.think)
}

func TestResult_Summary(t *testing.T) {
	res := &Result{Outcome: ir.OutcomeDied, DeadActor: 2, ElapsedMs: 310, Meals: []int{1, 0}, Lines: 9}
	sum := res.Summary("abc")

	assert.Equal(t, ir.OutcomeDied, sum.Outcome)
	assert.Equal(t, 2, sum.DeadActor)
	assert.Equal(t, int64(310), sum.ElapsedMs)
	assert.Equal(t, 9, sum.Events)
	assert.Equal(t, "abc", sum.Digest)

	res.Meals[0] = 5
	assert.Equal(t, []int{1, 0}, sum.Meals, "summary owns its meals slice")
}
