package model

import "errors"

var ErrInvalidReminder = errors.New("model: invalid reminder offset")

// DayBeforeMinutes is the offset at or above which a reminder fires the day
// before the due date.
const DayBeforeMinutes = 1440

type ReminderKind string

const (
	ReminderDayBefore ReminderKind = "day_before"
	ReminderSameDay   ReminderKind = "same_day"
)

func (k ReminderKind) IsValid() bool {
	switch k {
	case ReminderDayBefore, ReminderSameDay:
		return true
	default:
		return false
	}
}

// LeadDays is how many days before the due date a reminder of this kind
// fires.
func (k ReminderKind) LeadDays() int {
	if k == ReminderDayBefore {
		return 1
	}
	return 0
}

// Reminder is an offset before a task's due date. Only the day granularity is
// used: offsets are bucketed into day-before and same-day.
type Reminder struct {
	OffsetMinutes int `json:"offsetMinutes" validate:"gte=0"`
}

func (r Reminder) Kind() ReminderKind {
	if r.OffsetMinutes >= DayBeforeMinutes {
		return ReminderDayBefore
	}
	return ReminderSameDay
}

func (r Reminder) Validate() error {
	return checkStruct(r, ErrInvalidReminder, nil)
}
