package harness

import "github.com/erkkaervice/philosophers/internal/ir"

// Result is the outcome of a scenario execution.
type Result struct {
	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// Config is the simulation that ran.
	Config ir.Config `json:"config"`

	// Pass indicates overall success: no log property violated and every
	// expectation met.
	Pass bool `json:"pass"`

	Outcome   ir.Outcome `json:"outcome"`
	DeadActor int        `json:"dead_actor,omitempty"`

	// Deaths is the number of "died" lines (0 or 1 in a correct run).
	Deaths int `json:"deaths"`

	// DeathAtMs is the elapsed time of the "died" line, 0 if none.
	DeathAtMs int64 `json:"death_at_ms,omitempty"`

	// Meals holds meals-eaten per actor, index 0 is actor 1.
	Meals []int `json:"meals"`

	// Events contains every printed line in output order.
	Events []ir.Event `json:"events"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult(scenario string, cfg ir.Config) *Result {
	return &Result{
		Scenario: scenario,
		Config:   cfg,
		Pass:     true,
		Meals:    []int{},
		Events:   []ir.Event{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Report is the timing-free view of a result used for golden comparison.
//
// Elapsed times and the event log vary from run to run and are left out.
// Meals are included only for completed runs, where every actor ate its
// quota; the dead actor only when the scenario pins it down.
type Report struct {
	Scenario  string
	Config    ir.Config
	Pass      bool
	Outcome   ir.Outcome
	DeadActor int
	Meals     []int
	Errors    []string
}

// Report builds the golden report of r. pinDeath includes the dead actor.
func (r *Result) Report(pinDeath bool) Report {
	rep := Report{
		Scenario: r.Scenario,
		Config:   r.Config,
		Pass:     r.Pass,
		Outcome:  r.Outcome,
		Errors:   r.Errors,
	}
	if pinDeath {
		rep.DeadActor = r.DeadActor
	}
	if r.Outcome == ir.OutcomeCompleted {
		rep.Meals = r.Meals
	}
	return rep
}

// CanonicalMap converts the report to the map form accepted by
// ir.MarshalCanonical.
func (r Report) CanonicalMap() map[string]any {
	out := map[string]any{
		"scenario": r.Scenario,
		"config":   r.Config.CanonicalMap(),
		"pass":     r.Pass,
		"outcome":  string(r.Outcome),
	}
	if r.DeadActor != 0 {
		out["dead_actor"] = r.DeadActor
	}
	if r.Meals != nil {
		meals := make([]any, len(r.Meals))
		for i, m := range r.Meals {
			meals[i] = m
		}
		out["meals"] = meals
	}
	if len(r.Errors) > 0 {
		errs := make([]any, len(r.Errors))
		for i, e := range r.Errors {
			errs[i] = e
		}
		out["errors"] = errs
	}
	return out
}
