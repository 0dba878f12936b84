// Package schedule computes the recurring-payment schedule for repeating
// receipts: the next run date, the end date, and the warning state for
// schedules that can never fire.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Unit is a recurrence frequency unit.
type Unit string

// Recurrence units.
const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

// Forever is the sentinel until-date meaning no end condition.
const Forever = "Forever"

// untilLayout is the explicit until-date input format (MM/DD/YYYY).
const untilLayout = "01/02/2006"

// ForeverCeiling is the far-future date stored in place of "no end". No
// realistic next run exceeds it.
var ForeverCeiling = time.Date(2300, time.January, 1, 0, 0, 0, 0, time.UTC)

// Schedule errors.
var (
	ErrInvalidUnit  = errors.New("invalid frequency unit")
	ErrInvalidCount = errors.New("frequency count must be a positive integer")
	ErrInvalidUntil = errors.New("invalid until date")
)

// ParseUnit normalizes a frequency unit string.
func ParseUnit(s string) (Unit, error) {
	switch Unit(strings.ToLower(strings.TrimSpace(s))) {
	case UnitDay:
		return UnitDay, nil
	case UnitWeek:
		return UnitWeek, nil
	case UnitMonth:
		return UnitMonth, nil
	case UnitYear:
		return UnitYear, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidUnit, s)
}

// NextRun returns base advanced by count units. Day and week intervals are
// exact day arithmetic; month and year intervals land on the same
// day-of-month, clamped to the target month's length (Jan 31 + 1 month is
// the last day of February, never March). A negative count walks the
// interval backwards, which tests use to invert a computed run.
func NextRun(base time.Time, unit Unit, count int) time.Time {
	switch unit {
	case UnitDay:
		return base.AddDate(0, 0, count)
	case UnitWeek:
		return base.AddDate(0, 0, 7*count)
	case UnitMonth:
		return addMonths(base, count)
	case UnitYear:
		return addMonths(base, 12*count)
	}
	return base
}

// EndDate resolves an until-date input against the schedule's base time.
// The Forever sentinel maps to ForeverCeiling; an explicit MM/DD/YYYY date
// takes the time-of-day from base so end-date comparisons line up with the
// computed next run.
func EndDate(until string, base time.Time) (time.Time, error) {
	if until == Forever {
		return ForeverCeiling, nil
	}

	day, err := time.ParseInLocation(untilLayout, until, base.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidUntil, until)
	}

	return CombineClock(day, base), nil
}

// CombineClock copies the time-of-day components of clock onto day.
func CombineClock(day, clock time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(),
		day.Location())
}

// Plan is a fully computed recurring schedule ready to persist.
type Plan struct {
	LastRun time.Time
	NextRun time.Time
	EndDate time.Time
	Unit    Unit
	Count   int

	// NeedsConfirmation is set when the end date precedes the next run:
	// the schedule is valid but will never fire, so the caller must get
	// explicit user confirmation before persisting it.
	NeedsConfirmation bool
}

// Compute derives the full schedule from the form inputs. base is the
// receipt date combined with the save-time clock; until is either Forever
// or an explicit MM/DD/YYYY date.
func Compute(base time.Time, unit Unit, count int, until string) (*Plan, error) {
	if _, err := ParseUnit(string(unit)); err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}

	next := NextRun(base, unit, count)
	end, err := EndDate(until, base)
	if err != nil {
		return nil, err
	}

	return &Plan{
		LastRun:           base,
		NextRun:           next,
		EndDate:           end,
		Unit:              unit,
		Count:             count,
		NeedsConfirmation: end.Before(next),
	}, nil
}

// addMonths advances t by the given number of calendar months, clamping the
// day-of-month to the target month's length and preserving the clock.
func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	total := int(month) - 1 + months
	year += total / 12
	total %= 12
	if total < 0 {
		total += 12
		year--
	}
	target := time.Month(total + 1)

	if last := daysIn(year, target); day > last {
		day = last
	}

	return time.Date(year, target, day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
