// Package dates canonicalizes due-date inputs into calendar dates and answers
// urgency questions against a single resolved "today".
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	isoLayout  = "2006-01-02"
	icalLayout = "20060102"
)

// Date is a year/month/day triple with no clock or zone component.
//
// A Date produced from unparseable input carries the fallback day (today, for
// display) and reports Valid() == false; classification treats it as never
// overdue and sorts it last.
type Date struct {
	year    int
	month   time.Month
	day     int
	invalid bool
}

// New builds a Date from face-value fields. Out-of-range fields are normalized
// the same way time.Date does (e.g. Feb 30 becomes Mar 2).
func New(year int, month time.Month, day int) Date {
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return Date{year: y, month: m, day: d}
}

// FromTime takes the calendar fields of t in t's own location. No zone
// conversion is applied, so an instant just before local midnight keeps its
// local day.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// Parse reads "YYYY-MM-DD", optionally followed by a "T..." or " ..." clock
// and zone suffix, which is discarded. The returned bool is false when the
// input is empty or malformed.
func Parse(input string) (Date, bool) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Date{}, false
	}
	if i := strings.IndexAny(raw, "Tt "); i >= 0 {
		raw = raw[:i]
	}
	parts := strings.Split(raw, "-")
	if len(parts) != 3 {
		return Date{}, false
	}
	y, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) != 4 {
		return Date{}, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 {
		return Date{}, false
	}
	d, err := strconv.Atoi(parts[2])
	if err != nil || d < 1 || d > daysIn(time.Month(m), y) {
		return Date{}, false
	}
	return Date{year: y, month: time.Month(m), day: d}, true
}

// Normalize is the lenient form of Parse: malformed input falls back to the
// calendar day of now and is flagged invalid. Callers that need strict
// validation check Valid().
func Normalize(input string, now time.Time) Date {
	if d, ok := Parse(input); ok {
		return d
	}
	fallback := FromTime(now)
	fallback.invalid = true
	return fallback
}

// ParseICal reads the YYYYMMDD form used by DTSTART;VALUE=DATE.
func ParseICal(value string) (Date, error) {
	t, err := time.Parse(icalLayout, strings.TrimSpace(value))
	if err != nil {
		return Date{}, fmt.Errorf("dates: parse ical date %q: %w", value, err)
	}
	return FromTime(t), nil
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Date) Valid() bool { return !d.invalid && d.year != 0 }

func (d Date) Year() int { return d.year }

func (d Date) Month() time.Month { return d.month }

func (d Date) Day() int { return d.day }

func (d Date) Weekday() time.Weekday { return d.midnightUTC().Weekday() }

// In returns local midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
}

// At returns d at hour:minute in loc.
func (d Date) At(hour, minute int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.year, d.month, d.day, hour, minute, 0, 0, loc)
}

// AddDays returns the date n calendar days after d. The invalid flag carries over.
func (d Date) AddDays(n int) Date {
	out := FromTime(d.midnightUTC().AddDate(0, 0, n))
	out.invalid = d.invalid
	return out
}

// DaysSince returns the signed number of calendar days from other to d.
func (d Date) DaysSince(other Date) int {
	return int(d.midnightUTC().Sub(other.midnightUTC()) / (24 * time.Hour))
}

// Compare returns -1, 0 or +1 by calendar order, ignoring the invalid flag.
func (d Date) Compare(other Date) int {
	switch {
	case d.year != other.year:
		return sign(d.year - other.year)
	case d.month != other.month:
		return sign(int(d.month) - int(other.month))
	default:
		return sign(d.day - other.day)
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }

func (d Date) After(other Date) bool { return d.Compare(other) > 0 }

// Equal reports calendar equality; an invalid date equals nothing.
func (d Date) Equal(other Date) bool {
	return d.Valid() && other.Valid() && d.Compare(other) == 0
}

// String renders YYYY-MM-DD.
func (d Date) String() string {
	return d.midnightUTC().Format(isoLayout)
}

// ICal renders the YYYYMMDD form for DATE values.
func (d Date) ICal() string {
	return d.midnightUTC().Format(icalLayout)
}

// midnightUTC is used for arithmetic only; UTC has no DST gaps so day
// differences are exact multiples of 24h.
func (d Date) midnightUTC() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
