package ir

import "time"

// Outcome describes how a run ended.
type Outcome string

const (
	// OutcomeDied means an actor starved and the death line was printed.
	OutcomeDied Outcome = "died"
	// OutcomeCompleted means every actor met the meal quota.
	OutcomeCompleted Outcome = "completed"
	// OutcomeInterrupted means the run was stopped from outside (signal or timeout).
	OutcomeInterrupted Outcome = "interrupted"
)

// Run identifies a recorded simulation run.
type Run struct {
	ID        string    `json:"id"`
	Config    Config    `json:"config"`
	StartedAt time.Time `json:"started_at"`

	// Summary is nil until the run has finished.
	Summary *Summary `json:"summary,omitempty"`
}

// Summary is the final state of a run.
type Summary struct {
	Outcome   Outcome `json:"outcome"`
	DeadActor int     `json:"dead_actor,omitempty"`
	ElapsedMs int64   `json:"elapsed_ms"`

	// Meals holds meals-eaten per actor, index 0 is actor 1.
	Meals []int `json:"meals"`

	// Events is the number of printed lines.
	Events int `json:"events"`

	// Digest is LogDigest over the printed lines.
	Digest string `json:"digest"`
}

// CanonicalMap converts the summary to the map form accepted by MarshalCanonical.
func (s Summary) CanonicalMap() map[string]any {
	meals := make([]any, len(s.Meals))
	for i, m := range s.Meals {
		meals[i] = m
	}
	out := map[string]any{
		"outcome":    string(s.Outcome),
		"elapsed_ms": s.ElapsedMs,
		"meals":      meals,
		"events":     s.Events,
		"digest":     s.Digest,
	}
	if s.DeadActor != 0 {
		out["dead_actor"] = s.DeadActor
	}
	return out
}
