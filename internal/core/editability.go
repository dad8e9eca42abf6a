package core

import (
	"time"

	"github.com/fatbomb/MealManagement/internal/config"
)

// Editability is the lock state of a meal record at a given moment.
type Editability string

const (
	// Open allows every field to change.
	Open Editability = "open"
	// LunchLocked allows only the dinner fields to change.
	LunchLocked Editability = "lunchLocked"
	// Locked allows no change.
	Locked Editability = "locked"
)

// EditPolicy decides editability from the wall clock. It holds no state.
type EditPolicy struct {
	Location       *time.Location
	LunchLockHour  int
	DinnerLockHour int
}

// NewEditPolicy builds a policy from the household tariff and time zone.
func NewEditPolicy(cfg *config.Config) EditPolicy {
	return EditPolicy{
		Location:       cfg.Location,
		LunchLockHour:  cfg.Tariff.LunchLockHour,
		DinnerLockHour: cfg.Tariff.DinnerLockHour,
	}
}

// Evaluate returns the state of the record for date as seen at now.
// date must already be a valid YYYY-MM-DD string.
func (p EditPolicy) Evaluate(now time.Time, date string, isMessManager bool) Editability {
	if isMessManager {
		return Open
	}
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	today := local.Format(dateLayout)

	switch {
	case date > today:
		return Open
	case date < today:
		return Locked
	case local.Hour() >= p.DinnerLockHour:
		return Locked
	case local.Hour() >= p.LunchLockHour:
		return LunchLocked
	default:
		return Open
	}
}
