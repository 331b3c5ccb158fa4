package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/studyd/internal/dates"
)

var (
	ErrInvalidCourse = errors.New("model: invalid course")
	ErrInvalidSlot   = errors.New("model: invalid schedule slot")
	ErrInvalidDay    = errors.New("model: invalid weekday")
)

// DefaultCourseLabel is shown for items with no course or a missing one.
const DefaultCourseLabel = "General"

type Course struct {
	ID       string               `json:"id" validate:"required"`
	UserID   string               `json:"userId" validate:"required"`
	Code     string               `json:"code" validate:"required"`
	Name     string               `json:"name"`
	Color    string               `json:"color,omitempty"`
	Schedule []CourseScheduleSlot `json:"schedule,omitempty"`
}

func (c Course) Label() string {
	if strings.TrimSpace(c.Code) == "" {
		return DefaultCourseLabel
	}
	return c.Code
}

// Validate checks course fields only. Malformed slots are tolerated here and
// skipped by consumers.
func (c Course) Validate() error {
	return checkStruct(c, ErrInvalidCourse, nil)
}

// CourseScheduleSlot is a weekly class meeting. Start and End are HH:MM in
// the user's local zone.
type CourseScheduleSlot struct {
	Day      string `json:"day" validate:"required"`
	Start    string `json:"start" validate:"required,datetime=15:04"`
	End      string `json:"end" validate:"required,datetime=15:04"`
	Location string `json:"location,omitempty"`
}

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) minutes() int {
	return c.Hour*60 + c.Minute
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func ParseClock(v string) (Clock, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(v))
	if err != nil {
		return Clock{}, fmt.Errorf("%w: time %q", ErrInvalidSlot, v)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekday accepts short and full English day names in any case.
func ParseWeekday(v string) (time.Weekday, error) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(v))]
	if !ok {
		return time.Sunday, fmt.Errorf("%w: %q", ErrInvalidDay, v)
	}
	return wd, nil
}

// Window parses the slot into weekday and start/end clocks, rejecting slots
// whose end is not after their start.
func (s CourseScheduleSlot) Window() (time.Weekday, Clock, Clock, error) {
	if err := checkStruct(s, ErrInvalidSlot, nil); err != nil {
		return time.Sunday, Clock{}, Clock{}, err
	}
	wd, err := ParseWeekday(s.Day)
	if err != nil {
		return time.Sunday, Clock{}, Clock{}, fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	}
	start, err := ParseClock(s.Start)
	if err != nil {
		return time.Sunday, Clock{}, Clock{}, err
	}
	end, err := ParseClock(s.End)
	if err != nil {
		return time.Sunday, Clock{}, Clock{}, err
	}
	if end.minutes() <= start.minutes() {
		return time.Sunday, Clock{}, Clock{}, fmt.Errorf("%w: end %s not after start %s", ErrInvalidSlot, end, start)
	}
	return wd, start, end, nil
}

func (s CourseScheduleSlot) Validate() error {
	_, _, _, err := s.Window()
	return err
}

// OccursOn reports whether the slot meets on d. Malformed slots never occur.
func (s CourseScheduleSlot) OccursOn(d dates.Date) bool {
	wd, _, _, err := s.Window()
	return err == nil && d.Valid() && d.Weekday() == wd
}

// NextOccurrence returns the next meeting on or after today's date in now's
// location. Today counts when its weekday matches, even if the class has
// already started.
func (s CourseScheduleSlot) NextOccurrence(now time.Time) (time.Time, time.Time, error) {
	wd, start, end, err := s.Window()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	today := dates.FromTime(now)
	ahead := (int(wd) - int(today.Weekday()) + 7) % 7
	day := today.AddDays(ahead)
	loc := now.Location()
	return day.At(start.Hour, start.Minute, loc), day.At(end.Hour, end.Minute, loc), nil
}
