package model

import (
	"errors"
	"testing"
	"time"
)

func TestParseWeekday(t *testing.T) {
	for in, want := range map[string]time.Weekday{
		"Mon":      time.Monday,
		"tue":      time.Tuesday,
		"THURSDAY": time.Thursday,
		" Sun ":    time.Sunday,
	} {
		got, err := ParseWeekday(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %s err=%v", in, got, err)
		}
	}
	if _, err := ParseWeekday("Funday"); !errors.Is(err, ErrInvalidDay) {
		t.Fatalf("expected ErrInvalidDay, got %v", err)
	}
}

func TestSlotWindowRejectsMalformed(t *testing.T) {
	cases := []CourseScheduleSlot{
		{Day: "Xyz", Start: "09:00", End: "10:00"},
		{Day: "Mon", Start: "9am", End: "10:00"},
		{Day: "Mon", Start: "10:00", End: "10:00"},
		{Day: "Mon", Start: "11:00", End: "10:00"},
		{Day: "", Start: "09:00", End: "10:00"},
	}
	for _, s := range cases {
		if err := s.Validate(); !errors.Is(err, ErrInvalidSlot) {
			t.Fatalf("%+v: expected ErrInvalidSlot, got %v", s, err)
		}
	}
}

func TestSlotOccursOn(t *testing.T) {
	slot := CourseScheduleSlot{Day: "Wed", Start: "09:00", End: "10:15"}
	if !slot.OccursOn(day(t, "2025-11-12")) {
		t.Fatal("expected Wednesday occurrence")
	}
	if slot.OccursOn(day(t, "2025-11-13")) {
		t.Fatal("Thursday must not match")
	}
	bad := CourseScheduleSlot{Day: "Wed", Start: "10:00", End: "09:00"}
	if bad.OccursOn(day(t, "2025-11-12")) {
		t.Fatal("malformed slot must never occur")
	}
}

func TestSlotNextOccurrence(t *testing.T) {
	loc := time.FixedZone("test", -5*3600)
	slot := CourseScheduleSlot{Day: "Mon", Start: "09:00", End: "10:15"}

	// Monday after class: today still counts.
	now := time.Date(2025, 11, 10, 15, 0, 0, 0, loc)
	start, end, err := slot.NextOccurrence(now)
	if err != nil {
		t.Fatalf("next occurrence: %v", err)
	}
	if start.Format("2006-01-02 15:04") != "2025-11-10 09:00" || end.Format("15:04") != "10:15" {
		t.Fatalf("unexpected window %s - %s", start, end)
	}

	// Sunday: next day.
	start, _, err = slot.NextOccurrence(time.Date(2025, 11, 16, 8, 0, 0, 0, loc))
	if err != nil || start.Format("2006-01-02") != "2025-11-17" {
		t.Fatalf("unexpected next start %s err=%v", start, err)
	}
}

func TestCourseLabelFallback(t *testing.T) {
	if (Course{Code: "CS101"}).Label() != "CS101" {
		t.Fatal("expected code label")
	}
	if (Course{}).Label() != DefaultCourseLabel {
		t.Fatal("expected General fallback")
	}
}
