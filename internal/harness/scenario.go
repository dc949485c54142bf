package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/erkkaervice/philosophers/internal/engine"
	"github.com/erkkaervice/philosophers/internal/ir"
)

// Scenario defines one simulation run and what its outcome must be.
type Scenario struct {
	// Name uniquely identifies this scenario. Also the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is the simulation to run.
	Config ir.Config `yaml:"config"`

	// TimeoutMs caps the run. A run that hits it ends with outcome
	// "interrupted". Zero means DefaultTimeout.
	TimeoutMs int `yaml:"timeout_ms,omitempty"`

	// NoStagger disables the start stagger and odd-ring think pause.
	NoStagger bool `yaml:"no_stagger,omitempty"`

	// Expect lists what the run must satisfy beyond the log properties.
	Expect Expectations `yaml:"expect"`
}

// Expectations are checked against a finished run. Unset fields are not
// checked.
type Expectations struct {
	// Outcome is the required run outcome.
	Outcome ir.Outcome `yaml:"outcome,omitempty"`

	// Deaths is the required number of "died" lines (0 or 1).
	Deaths *int `yaml:"deaths,omitempty"`

	// DiedActor is the actor that must die.
	DiedActor int `yaml:"died_actor,omitempty"`

	// DeathAtMs bounds the elapsed time of the "died" line.
	DeathAtMs *MsRange `yaml:"death_at_ms,omitempty"`

	// MealsEach is the exact meal count every actor must reach.
	MealsEach *int `yaml:"meals_each,omitempty"`

	// MinMeals is the meal count every actor must at least reach.
	MinMeals int `yaml:"min_meals,omitempty"`
}

// MsRange is an inclusive millisecond range.
type MsRange struct {
	Min int64 `yaml:"min"`
	Max int64 `yaml:"max"`
}

// Contains reports whether ms lies within the range.
func (r MsRange) Contains(ms int64) bool {
	return ms >= r.Min && ms <= r.Max
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "expects:" vs "expect:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if err := engine.ValidateConfig(s.Config); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if s.TimeoutMs < 0 {
		return fmt.Errorf("timeout_ms must be non-negative")
	}

	return validateExpectations(s.Config, &s.Expect)
}

// validateExpectations rejects expectations no run of cfg could meet.
func validateExpectations(cfg ir.Config, e *Expectations) error {
	switch e.Outcome {
	case "", ir.OutcomeDied, ir.OutcomeCompleted, ir.OutcomeInterrupted:
	default:
		return fmt.Errorf("expect.outcome: unknown outcome %q", e.Outcome)
	}

	if e.Outcome == ir.OutcomeCompleted && !cfg.HasQuota() {
		return fmt.Errorf("expect.outcome: completed requires a quota")
	}

	if e.Deaths != nil && (*e.Deaths < 0 || *e.Deaths > 1) {
		return fmt.Errorf("expect.deaths: must be 0 or 1")
	}

	if e.DiedActor != 0 && (e.DiedActor < 1 || e.DiedActor > cfg.Actors) {
		return fmt.Errorf("expect.died_actor: %d is not in 1..%d", e.DiedActor, cfg.Actors)
	}

	if e.DeathAtMs != nil && e.DeathAtMs.Min > e.DeathAtMs.Max {
		return fmt.Errorf("expect.death_at_ms: min %d exceeds max %d", e.DeathAtMs.Min, e.DeathAtMs.Max)
	}

	if e.MealsEach != nil {
		if !cfg.HasQuota() {
			return fmt.Errorf("expect.meals_each: requires a quota")
		}
		if *e.MealsEach < 0 || *e.MealsEach > cfg.Quota {
			return fmt.Errorf("expect.meals_each: %d is not in 0..%d", *e.MealsEach, cfg.Quota)
		}
	}

	if e.MinMeals < 0 {
		return fmt.Errorf("expect.min_meals: must be non-negative")
	}
	return nil
}
