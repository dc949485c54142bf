package engine

import (
	"errors"
	"fmt"
)

// ErrAlreadyRun is returned when Run is called twice on one Simulation.
var ErrAlreadyRun = errors.New("simulation already run")

// SimulationError represents an error detected while building or running a
// simulation.
//
// Simulation errors include:
//   - Invalid config: a parameter is missing or out of range
//   - Quota exceeded: one more meal would overshoot the meal quota
//   - Fork corrupted: a fork was acquired while another actor held it
//   - Deadlock prone: the fork acquisition order contains a wait cycle
//
// Fork corruption is never returned; it is raised as a panic value because
// the invariants cannot be trusted after it.
type SimulationError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Field names the offending config parameter (for config errors).
	Field string

	// Actor identifies the affected actor, 0 if none.
	Actor int

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes simulation errors.
type ErrorCode string

const (
	// ErrCodeInvalidConfig indicates a config parameter is out of range.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"

	// ErrCodeQuotaExceeded indicates a meal would exceed the quota.
	ErrCodeQuotaExceeded ErrorCode = "QUOTA_EXCEEDED"

	// ErrCodeForkCorrupted indicates mutual exclusion on a fork was violated.
	ErrCodeForkCorrupted ErrorCode = "FORK_CORRUPTED"

	// ErrCodeDeadlockProne indicates the acquisition order allows a
	// hold-and-wait cycle.
	ErrCodeDeadlockProne ErrorCode = "DEADLOCK_PRONE"
)

// Error implements the error interface.
func (e *SimulationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	if e.Actor != 0 {
		return fmt.Sprintf("%s: %s (actor=%d)", e.Code, e.Message, e.Actor)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigError returns true if the error is an invalid config error.
// Uses errors.As to handle wrapped errors.
func IsConfigError(err error) bool {
	var se *SimulationError
	if errors.As(err, &se) {
		return se.Code == ErrCodeInvalidConfig
	}
	return false
}

// IsQuotaError returns true if the error is a quota exceeded error.
// Matches both SimulationError with ErrCodeQuotaExceeded and QuotaExceededError.
func IsQuotaError(err error) bool {
	var se *SimulationError
	if errors.As(err, &se) {
		return se.Code == ErrCodeQuotaExceeded
	}
	var qe *QuotaExceededError
	return errors.As(err, &qe)
}

// NewConfigError creates a SimulationError for an invalid parameter.
func NewConfigError(field string, value int, reason string) *SimulationError {
	return &SimulationError{
		Code:    ErrCodeInvalidConfig,
		Message: fmt.Sprintf("%s (got %d)", reason, value),
		Field:   field,
		Details: map[string]string{
			"value": fmt.Sprintf("%d", value),
		},
	}
}

// newForkCorruptedError describes a fork taken while already held.
func newForkCorruptedError(fork, holder, actor int) *SimulationError {
	return &SimulationError{
		Code:    ErrCodeForkCorrupted,
		Message: fmt.Sprintf("fork %d acquired while held by actor %d", fork, holder),
		Actor:   actor,
		Details: map[string]string{
			"fork":   fmt.Sprintf("%d", fork),
			"holder": fmt.Sprintf("%d", holder),
		},
	}
}

// newDeadlockProneError describes a wait cycle over fork indices.
func newDeadlockProneError(cycle []int) *SimulationError {
	return &SimulationError{
		Code:    ErrCodeDeadlockProne,
		Message: fmt.Sprintf("acquisition order allows wait cycle over forks %v", cycle),
		Details: map[string]string{
			"cycle_len": fmt.Sprintf("%d", len(cycle)-1),
		},
	}
}
