package model

import (
	"errors"
	"testing"
	"time"
)

func TestTaskValidateSuccess(t *testing.T) {
	task := Task{
		ID:        "task-1",
		UserID:    "u1",
		Title:     "Read chapter 4",
		DueDate:   "2025-11-10T18:00:00Z",
		Priority:  PriorityHigh,
		Reminders: []Reminder{{OffsetMinutes: 1440}, {OffsetMinutes: 60}},
		Recurrence: &RecurrenceRule{
			Frequency: FrequencyWeekly,
			Interval:  1,
		},
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}
	due, ok := task.Due()
	if !ok || due.String() != "2025-11-10" {
		t.Fatalf("unexpected due: %s ok=%v", due, ok)
	}
	if !task.Recurring() {
		t.Fatal("expected recurring")
	}
}

func TestTaskValidateErrors(t *testing.T) {
	base := Task{ID: "t", UserID: "u", Title: "x"}

	missing := base
	missing.Title = ""
	if err := missing.Validate(); !errors.Is(err, ErrInvalidTask) {
		t.Fatalf("expected ErrInvalidTask, got %v", err)
	}

	badPriority := base
	badPriority.Priority = "urgent"
	if err := badPriority.Validate(); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}

	badReminder := base
	badReminder.Reminders = []Reminder{{OffsetMinutes: -1}}
	if err := badReminder.Validate(); !errors.Is(err, ErrInvalidReminder) {
		t.Fatalf("expected ErrInvalidReminder, got %v", err)
	}

	badRule := base
	badRule.Recurrence = &RecurrenceRule{Frequency: "yearly"}
	if err := badRule.Validate(); !errors.Is(err, ErrInvalidRecurrence) {
		t.Fatalf("expected ErrInvalidRecurrence, got %v", err)
	}
}

func TestTaskWithMalformedDueDateStillValidates(t *testing.T) {
	task := Task{ID: "t", UserID: "u", Title: "x", DueDate: "next week"}
	if err := task.Validate(); err != nil {
		t.Fatalf("malformed due dates are tolerated: %v", err)
	}
	if _, ok := task.Due(); ok {
		t.Fatal("expected Due to report invalid")
	}
}

func TestAssignmentCompleted(t *testing.T) {
	a := Assignment{ID: "a", UserID: "u", Title: "Essay"}
	if a.Completed() {
		t.Fatal("unscored assignment is not completed")
	}
	score := 0.0
	a.PointsEarned = &score
	if !a.Completed() {
		t.Fatal("a zero score still counts as completed")
	}
}

func TestNotificationValidate(t *testing.T) {
	n := Notification{
		ID:        "n1",
		UserID:    "u1",
		Type:      NotificationReminder,
		Title:     "Task Reminder",
		Message:   "hi",
		CreatedAt: time.Date(2025, 11, 9, 8, 0, 0, 0, time.UTC),
	}
	if err := n.Validate(); err != nil {
		t.Fatalf("expected valid notification: %v", err)
	}
	n.Type = "email"
	if err := n.Validate(); !errors.Is(err, ErrInvalidNotificationType) {
		t.Fatalf("expected ErrInvalidNotificationType, got %v", err)
	}
}
