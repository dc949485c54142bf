package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/erkkaervice/philosophers/internal/ir"
)

// timeLayout is how started_at is stored. Fixed-width UTC so text order is
// time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// marshalConfig converts a Config to canonical JSON TEXT for storage.
func marshalConfig(cfg ir.Config) (string, error) {
	data, err := ir.MarshalCanonical(cfg.CanonicalMap())
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(data), nil
}

// marshalSummary converts a Summary to canonical JSON TEXT for storage.
func marshalSummary(sum ir.Summary) (string, error) {
	data, err := ir.MarshalCanonical(sum.CanonicalMap())
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	return string(data), nil
}

// unmarshalConfig parses canonical JSON TEXT to Config.
func unmarshalConfig(data string) (ir.Config, error) {
	var cfg ir.Config
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return ir.Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// unmarshalSummary parses canonical JSON TEXT to Summary.
// Returns nil for a run that never finished.
func unmarshalSummary(data *string) (*ir.Summary, error) {
	if data == nil || *data == "" {
		return nil, nil
	}
	var sum ir.Summary
	if err := json.Unmarshal([]byte(*data), &sum); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	if sum.Meals == nil {
		sum.Meals = []int{}
	}
	return &sum, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse started_at %q: %w", s, err)
	}
	return t, nil
}
