package ir

import "strconv"

// Config holds the fixed parameters of one simulation run.
//
// Quota is zero when no meal quota was given; actors then run until one of
// them dies.
type Config struct {
	Actors  int `json:"actors" yaml:"actors"`
	DieMs   int `json:"die_ms" yaml:"die_ms"`
	EatMs   int `json:"eat_ms" yaml:"eat_ms"`
	SleepMs int `json:"sleep_ms" yaml:"sleep_ms"`
	Quota   int `json:"quota,omitempty" yaml:"quota,omitempty"`
}

// HasQuota reports whether a meal quota is configured.
func (c Config) HasQuota() bool {
	return c.Quota > 0
}

// Args renders the config as the positional command-line arguments that
// produce it.
func (c Config) Args() []string {
	args := []string{
		strconv.Itoa(c.Actors),
		strconv.Itoa(c.DieMs),
		strconv.Itoa(c.EatMs),
		strconv.Itoa(c.SleepMs),
	}
	if c.HasQuota() {
		args = append(args, strconv.Itoa(c.Quota))
	}
	return args
}

// CanonicalMap converts the config to the map form accepted by MarshalCanonical.
func (c Config) CanonicalMap() map[string]any {
	out := map[string]any{
		"actors":   c.Actors,
		"die_ms":   c.DieMs,
		"eat_ms":   c.EatMs,
		"sleep_ms": c.SleepMs,
	}
	if c.HasQuota() {
		out["quota"] = c.Quota
	}
	return out
}
