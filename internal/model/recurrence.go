package model

import (
	"fmt"

	"github.com/sandeepkv93/studyd/internal/dates"
)

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly:
		return true
	default:
		return false
	}
}

// RecurrenceRule repeats a task from its due date (the anchor) with no end
// date. Interval <= 0 is read as 1.
type RecurrenceRule struct {
	Frequency Frequency `json:"frequency" validate:"required"`
	Interval  int       `json:"interval,omitempty" validate:"gte=0"`
}

func (r RecurrenceRule) Validate() error {
	if err := checkStruct(r, ErrInvalidRecurrence, map[string]error{"Interval": ErrInvalidInterval}); err != nil {
		return err
	}
	if !r.Frequency.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRecurrence, r.Frequency)
	}
	return nil
}

// Step is the effective interval.
func (r RecurrenceRule) Step() int {
	if r.Interval <= 0 {
		return 1
	}
	return r.Interval
}

func (r RecurrenceRule) periodDays() int {
	switch r.Frequency {
	case FrequencyDaily:
		return r.Step()
	case FrequencyWeekly:
		return 7 * r.Step()
	default:
		return 0
	}
}

// OccursOn reports whether d is an occurrence of the series starting at
// anchor, the anchor itself included. For weekly rules this means same
// weekday as the anchor and d >= anchor.
func (r RecurrenceRule) OccursOn(anchor, d dates.Date) bool {
	period := r.periodDays()
	if period == 0 || !anchor.Valid() || !d.Valid() || d.Before(anchor) {
		return false
	}
	return d.DaysSince(anchor)%period == 0
}

// RepeatsOn is OccursOn without the anchor date, which callers already report
// as the primary due-date occurrence.
func (r RecurrenceRule) RepeatsOn(anchor, d dates.Date) bool {
	return r.OccursOn(anchor, d) && d.After(anchor)
}

// NextOnOrAfter returns the first occurrence on or after from.
func (r RecurrenceRule) NextOnOrAfter(anchor, from dates.Date) (dates.Date, error) {
	if err := r.Validate(); err != nil {
		return dates.Date{}, err
	}
	if !anchor.Valid() {
		return dates.Date{}, ErrInvalidAnchor
	}
	if !from.After(anchor) {
		return anchor, nil
	}
	period := r.periodDays()
	elapsed := from.DaysSince(anchor)
	steps := (elapsed + period - 1) / period
	return anchor.AddDays(steps * period), nil
}

// Preview lists up to count occurrences on or after from.
func (r RecurrenceRule) Preview(anchor, from dates.Date, count int) ([]dates.Date, error) {
	if count <= 0 {
		return []dates.Date{}, nil
	}
	first, err := r.NextOnOrAfter(anchor, from)
	if err != nil {
		return nil, err
	}
	out := make([]dates.Date, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, first.AddDays(i*r.periodDays()))
	}
	return out, nil
}
