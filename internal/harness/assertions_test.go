package harness

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erkkaervice/philosophers/internal/ir"
)

var threeActors = ir.Config{Actors: 3, DieMs: 410, EatMs: 200, SleepMs: 200}

func ev(elapsed int64, actor int, kind ir.EventKind) ir.Event {
	return ir.Event{ElapsedMs: elapsed, Actor: actor, Kind: kind}
}

// numbered assigns Seq in order, as ParseLog would.
func numbered(events ...ir.Event) []ir.Event {
	for i := range events {
		events[i].Seq = int64(i + 1)
	}
	return events
}

func properties(errs []error) []string {
	var props []string
	for _, err := range errs {
		var ae *AssertionError
		if errors.As(err, &ae) {
			props = append(props, ae.Property)
		}
	}
	return props
}

func TestCheckLog_ValidFixture(t *testing.T) {
	f, err := os.Open("testdata/logs/valid.log")
	require.NoError(t, err)
	defer f.Close()

	events, err := ParseLog(f)
	require.NoError(t, err)
	assert.Empty(t, CheckLog(events, threeActors))
}

func TestCheckLog_PostMortemFixture(t *testing.T) {
	f, err := os.Open("testdata/logs/post_mortem.log")
	require.NoError(t, err)
	defer f.Close()

	events, err := ParseLog(f)
	require.NoError(t, err)
	assert.Equal(t, []string{PropNoPostMortem}, properties(CheckLog(events, threeActors)))
}

func TestCheckLog_Violations(t *testing.T) {
	tests := []struct {
		name   string
		cfg    ir.Config
		events []ir.Event
		want   []string
	}{
		{
			name:   "time goes backwards",
			cfg:    threeActors,
			events: numbered(ev(10, 1, ir.KindThinking), ev(9, 2, ir.KindThinking)),
			want:   []string{PropElapsedMonotonic},
		},
		{
			name:   "actor out of range",
			cfg:    threeActors,
			events: numbered(ev(0, 4, ir.KindThinking), ev(0, 0, ir.KindThinking)),
			want:   []string{PropActorRange, PropActorRange},
		},
		{
			name:   "two deaths",
			cfg:    threeActors,
			events: numbered(ev(410, 1, ir.KindDied), ev(410, 2, ir.KindDied)),
			want:   []string{PropSingleDeath},
		},
		{
			name:   "eat with one fork",
			cfg:    threeActors,
			events: numbered(ev(0, 1, ir.KindTookFork), ev(0, 1, ir.KindEating)),
			want:   []string{PropForksBeforeEat},
		},
		{
			name: "three forks",
			cfg:  threeActors,
			events: numbered(
				ev(0, 1, ir.KindTookFork), ev(0, 1, ir.KindTookFork), ev(0, 1, ir.KindTookFork),
			),
			want: []string{PropForksBeforeEat},
		},
		{
			name: "neighbours overlap",
			cfg:  threeActors,
			events: numbered(
				ev(0, 1, ir.KindTookFork), ev(0, 1, ir.KindTookFork), ev(0, 1, ir.KindEating),
				ev(150, 2, ir.KindTookFork), ev(150, 2, ir.KindTookFork), ev(150, 2, ir.KindEating),
			),
			want: []string{PropExclusiveMeals},
		},
		{
			name: "quota overshoot",
			cfg:  ir.Config{Actors: 2, DieMs: 410, EatMs: 10, SleepMs: 10, Quota: 1},
			events: numbered(
				ev(0, 1, ir.KindTookFork), ev(0, 1, ir.KindTookFork), ev(0, 1, ir.KindEating),
				ev(20, 1, ir.KindTookFork), ev(20, 1, ir.KindTookFork), ev(20, 1, ir.KindEating),
			),
			// every line after the first meal breaks sated_exit, the second meal also quota
			want: []string{PropSatedExit, PropSatedExit, PropSatedExit, PropQuota},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, properties(CheckLog(tt.events, tt.cfg)))
		})
	}
}

func TestCheckLog_NonNeighboursMayOverlap(t *testing.T) {
	cfg := ir.Config{Actors: 4, DieMs: 410, EatMs: 200, SleepMs: 200}
	events := numbered(
		ev(0, 1, ir.KindTookFork), ev(0, 1, ir.KindTookFork), ev(0, 1, ir.KindEating),
		ev(0, 3, ir.KindTookFork), ev(0, 3, ir.KindTookFork), ev(0, 3, ir.KindEating),
	)
	assert.Empty(t, CheckLog(events, cfg))
}

func TestCheckLog_SingleActor(t *testing.T) {
	cfg := ir.Config{Actors: 1, DieMs: 200, EatMs: 100, SleepMs: 100}
	events := numbered(ev(0, 1, ir.KindTookFork), ev(200, 1, ir.KindDied))
	assert.Empty(t, CheckLog(events, cfg))
}

func TestNeighbours(t *testing.T) {
	assert.Nil(t, neighbours(1, 1))
	assert.Equal(t, []int{2}, neighbours(1, 2))
	assert.Equal(t, []int{1}, neighbours(2, 2))
	assert.Equal(t, []int{5, 2}, neighbours(1, 5))
	assert.Equal(t, []int{4, 1}, neighbours(5, 5))
}

func TestAssertionError_Format(t *testing.T) {
	e := violation(PropNoPostMortem, ir.Event{Seq: 5, ElapsedMs: 61, Actor: 1, Kind: ir.KindSleeping},
		"no line after the death", "actor %d printed %q", 1, "is sleeping")

	want := "Assertion failed: no_post_mortem\n" +
		"  Expected: no line after the death\n" +
		"  Actual: actor 1 printed \"is sleeping\"\n" +
		"  Line 5: 61 1 is sleeping"
	assert.Equal(t, want, e.Error())
}

func TestExpectations_Evaluate(t *testing.T) {
	one, seven := 1, 7
	e := Expectations{
		Outcome:   ir.OutcomeDied,
		Deaths:    &one,
		DiedActor: 2,
		DeathAtMs: &MsRange{Min: 400, Max: 420},
	}

	ok := &Result{Outcome: ir.OutcomeDied, Deaths: 1, DeadActor: 2, DeathAtMs: 410, Meals: []int{1, 1}}
	assert.Empty(t, e.Evaluate(ok))

	late := &Result{Outcome: ir.OutcomeDied, Deaths: 1, DeadActor: 1, DeathAtMs: 500, Meals: []int{1, 1}}
	assert.Equal(t, []string{ExpectDiedActor, ExpectDeathAt}, properties(e.Evaluate(late)))

	survived := &Result{Outcome: ir.OutcomeInterrupted, Meals: []int{3, 3}}
	assert.Equal(t, []string{ExpectOutcome, ExpectDeaths, ExpectDiedActor, ExpectDeathAt},
		properties(e.Evaluate(survived)))

	meals := Expectations{MealsEach: &seven, MinMeals: 5}
	short := &Result{Outcome: ir.OutcomeCompleted, Meals: []int{7, 4}}
	assert.Equal(t, []string{ExpectMealsEach, ExpectMinMeals}, properties(meals.Evaluate(short)))
}
