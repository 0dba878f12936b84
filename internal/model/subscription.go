package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRecurrence indicates a subscription whose unit counts do not
// describe exactly one recurrence interval.
var ErrInvalidRecurrence = errors.New("invalid recurrence")

// Subscription represents the recurring schedule spawned by a repeating
// receipt. Exactly one of the four unit-count fields is positive; the other
// three are zero.
type Subscription struct {
	EndDate        time.Time
	LastRun        time.Time
	NextRun        time.Time
	ID             string
	UserID         string
	ReceiptID      string
	RepeatingDay   int
	RepeatingWeek  int
	RepeatingMonth int
	RepeatingYear  int
	Active         bool
}

// Validate checks the exactly-one-positive-unit invariant.
func (s *Subscription) Validate() error {
	positive := 0
	for _, n := range []int{s.RepeatingDay, s.RepeatingWeek, s.RepeatingMonth, s.RepeatingYear} {
		if n < 0 {
			return fmt.Errorf("%w: negative unit count", ErrInvalidRecurrence)
		}
		if n > 0 {
			positive++
		}
	}
	if positive != 1 {
		return fmt.Errorf("%w: exactly one unit count must be positive, got %d", ErrInvalidRecurrence, positive)
	}
	return nil
}

// Interval returns the subscription's unit name and count, e.g. ("month", 3).
func (s *Subscription) Interval() (string, int) {
	switch {
	case s.RepeatingDay > 0:
		return "day", s.RepeatingDay
	case s.RepeatingWeek > 0:
		return "week", s.RepeatingWeek
	case s.RepeatingMonth > 0:
		return "month", s.RepeatingMonth
	case s.RepeatingYear > 0:
		return "year", s.RepeatingYear
	}
	return "", 0
}
