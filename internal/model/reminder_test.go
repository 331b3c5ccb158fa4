package model

import (
	"errors"
	"testing"
)

func TestReminderKindThreshold(t *testing.T) {
	cases := []struct {
		offset int
		want   ReminderKind
	}{
		{0, ReminderSameDay},
		{60, ReminderSameDay},
		{1439, ReminderSameDay},
		{1440, ReminderDayBefore},
		{2880, ReminderDayBefore},
	}
	for _, tc := range cases {
		if got := (Reminder{OffsetMinutes: tc.offset}).Kind(); got != tc.want {
			t.Fatalf("offset %d: got %s want %s", tc.offset, got, tc.want)
		}
	}
	if ReminderDayBefore.LeadDays() != 1 || ReminderSameDay.LeadDays() != 0 {
		t.Fatal("unexpected lead days")
	}
}

func TestReminderValidateRejectsNegative(t *testing.T) {
	err := (Reminder{OffsetMinutes: -5}).Validate()
	if !errors.Is(err, ErrInvalidReminder) {
		t.Fatalf("expected ErrInvalidReminder, got %v", err)
	}
}
