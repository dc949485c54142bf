package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// EventKind identifies one of the observable actor transitions.
type EventKind string

const (
	// KindTookFork is logged once per fork acquired.
	KindTookFork EventKind = "fork"
	// KindEating is logged when an actor holds both forks and starts a meal.
	KindEating EventKind = "eat"
	// KindSleeping is logged when an actor starts resting.
	KindSleeping EventKind = "sleep"
	// KindThinking is logged when an actor starts reflecting.
	KindThinking EventKind = "think"
	// KindDied is the death announcement; at most one per run.
	KindDied EventKind = "died"
)

var kindMessages = map[EventKind]string{
	KindTookFork: "has taken a fork",
	KindEating:   "is eating",
	KindSleeping: "is sleeping",
	KindThinking: "is thinking",
	KindDied:     "died",
}

// Message returns the text printed for the kind.
func (k EventKind) Message() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return string(k)
}

// Valid reports whether k is one of the known kinds.
func (k EventKind) Valid() bool {
	_, ok := kindMessages[k]
	return ok
}

// ParseKind maps a printed message back to its kind.
func ParseKind(msg string) (EventKind, bool) {
	for k, m := range kindMessages {
		if m == msg {
			return k, true
		}
	}
	return "", false
}

// Event is one line of the simulation log.
type Event struct {
	// Seq is the position of the line in the output, starting at 1.
	Seq int64 `json:"seq"`

	// ElapsedMs is the time since simulation start when the line was printed.
	ElapsedMs int64 `json:"elapsed_ms"`

	// Actor is the 1-based actor id.
	Actor int `json:"actor"`

	// Kind is the transition the line reports.
	Kind EventKind `json:"kind"`
}

// Line renders the event in the output format "<elapsed_ms> <actor_id> <message>".
func (e Event) Line() string {
	return fmt.Sprintf("%d %d %s", e.ElapsedMs, e.Actor, e.Kind.Message())
}

// ParseLine parses a single output line. Seq is left zero.
func ParseLine(line string) (Event, error) {
	fields := strings.SplitN(strings.TrimSpace(line), " ", 3)
	if len(fields) != 3 {
		return Event{}, fmt.Errorf("malformed line %q: want \"<elapsed_ms> <actor_id> <message>\"", line)
	}
	elapsed, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("malformed elapsed time in %q: %w", line, err)
	}
	actor, err := strconv.Atoi(fields[1])
	if err != nil {
		return Event{}, fmt.Errorf("malformed actor id in %q: %w", line, err)
	}
	kind, ok := ParseKind(fields[2])
	if !ok {
		return Event{}, fmt.Errorf("unknown message %q", fields[2])
	}
	return Event{ElapsedMs: elapsed, Actor: actor, Kind: kind}, nil
}
