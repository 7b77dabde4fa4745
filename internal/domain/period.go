package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidPeriod = errors.New("from must not be after to")

// Period is the half-open interval [From, To).
type Period struct {
	From time.Time
	To   time.Time
}

// ParseDay reads a YYYY-MM-DD date as midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}

	return day, nil
}

// DayPeriod covers the whole calendar day of t in loc.
func DayPeriod(t time.Time, loc *time.Location) Period {
	local := t.In(loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	return Period{From: from, To: from.AddDate(0, 0, 1)}
}

// NewPeriod builds a period from two inclusive days.
func NewPeriod(from, to time.Time) (Period, error) {
	if to.Before(from) {
		return Period{}, ErrInvalidPeriod
	}

	return Period{From: from, To: to.AddDate(0, 0, 1)}, nil
}

// LastDay is the inclusive end of the period.
func (p Period) LastDay() time.Time {
	return p.To.AddDate(0, 0, -1)
}
