package model

import (
	"errors"
	"fmt"

	"github.com/sandeepkv93/studyd/internal/dates"
)

var (
	ErrInvalidTask       = errors.New("model: invalid task")
	ErrInvalidPriority   = errors.New("model: invalid task priority")
	ErrInvalidRecurrence = errors.New("model: invalid recurrence frequency")
	ErrInvalidInterval   = errors.New("model: invalid recurrence interval")
	ErrInvalidAnchor     = errors.New("model: recurrence anchor is not a valid date")
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

type Attachment struct {
	Name     string `json:"name" validate:"required"`
	URL      string `json:"url" validate:"required,url"`
	MimeType string `json:"mimeType,omitempty"`
}

// Task is a user-owned study task. DueDate is kept as entered; use Due to get
// a calendar date.
type Task struct {
	ID               string          `json:"id" validate:"required"`
	UserID           string          `json:"userId" validate:"required"`
	Title            string          `json:"title" validate:"required"`
	DueDate          string          `json:"dueDate"`
	Completed        bool            `json:"completed"`
	Priority         Priority        `json:"priority,omitempty"`
	EstimatedMinutes int             `json:"estimatedMinutes,omitempty" validate:"gte=0"`
	Recurrence       *RecurrenceRule `json:"recurrence,omitempty"`
	Reminders        []Reminder      `json:"reminders,omitempty" validate:"dive"`
	Notes            string          `json:"notes,omitempty"`
	Attachments      []Attachment    `json:"attachments,omitempty" validate:"dive"`
}

func (t Task) Due() (dates.Date, bool) {
	return dates.Parse(t.DueDate)
}

// Recurring reports whether the task has a usable recurrence rule.
func (t Task) Recurring() bool {
	return t.Recurrence != nil && t.Recurrence.Frequency.IsValid()
}

func (t Task) Validate() error {
	err := checkStruct(t, ErrInvalidTask, map[string]error{
		"OffsetMinutes": ErrInvalidReminder,
		"Frequency":     ErrInvalidRecurrence,
		"Interval":      ErrInvalidInterval,
	})
	if err != nil {
		return err
	}
	if t.Priority != "" && !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if t.Recurrence != nil {
		if err := t.Recurrence.Validate(); err != nil {
			return err
		}
	}
	return nil
}
