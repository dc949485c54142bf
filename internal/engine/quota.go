package engine

import (
	"errors"
	"fmt"
)

// MealQuota tracks the optional per-actor meal limit.
//
// A zero MealQuota is disabled: actors eat until the simulation stops.
// When enabled, an actor that has eaten limit meals is sated, leaves the
// table and is no longer subject to the death deadline. Meals never exceed
// the limit; Check refuses the meal that would.
type MealQuota struct {
	limit int
}

// NewMealQuota creates a quota. limit <= 0 disables it.
func NewMealQuota(limit int) MealQuota {
	if limit < 0 {
		limit = 0
	}
	return MealQuota{limit: limit}
}

// Enabled reports whether a limit is configured.
func (q MealQuota) Enabled() bool {
	return q.limit > 0
}

// Limit returns the configured limit, 0 if disabled.
func (q MealQuota) Limit() int {
	return q.limit
}

// Sated reports whether meals has reached the limit.
// Always false when the quota is disabled.
func (q MealQuota) Sated(meals int) bool {
	return q.Enabled() && meals >= q.limit
}

// Check validates that one more meal is allowed after meals.
//
// Returns QuotaExceededError if the next meal would overshoot the limit.
func (q MealQuota) Check(actor, meals int) error {
	if q.Enabled() && meals+1 > q.limit {
		return &QuotaExceededError{
			Actor: actor,
			Meals: meals + 1,
			Limit: q.limit,
		}
	}
	return nil
}

// QuotaExceededError is returned when a meal would exceed the quota.
type QuotaExceededError struct {
	Actor int // The actor that tried to eat
	Meals int // The meal count the actor would have reached
	Limit int // Maximum allowed meals
}

// Error implements the error interface.
func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("actor %d exceeded meal quota: %d meals > %d limit",
		e.Actor, e.Meals, e.Limit)
}

// IsQuotaExceededError returns true if the error is a QuotaExceededError.
// Uses errors.As to handle wrapped errors.
func IsQuotaExceededError(err error) bool {
	var qe *QuotaExceededError
	return errors.As(err, &qe)
}
