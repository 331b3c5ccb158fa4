package dates

import (
	"testing"
	"time"
)

func mustParse(t *testing.T, s string) Date {
	t.Helper()
	d, ok := Parse(s)
	if !ok {
		t.Fatalf("parse %q failed", s)
	}
	return d
}

func TestIsOverdueMatchesStrictBefore(t *testing.T) {
	today := New(2025, time.December, 1)
	c := ClassifierFor(today)
	for offset := -40; offset <= 40; offset++ {
		d := today.AddDays(offset)
		if got, want := c.IsOverdue(d), d.Before(today); got != want {
			t.Fatalf("offset %d: IsOverdue=%v want %v", offset, got, want)
		}
	}
	if c.IsOverdue(Normalize("garbage", today.In(time.UTC).AddDate(0, 0, -10))) {
		t.Fatal("invalid date must never be overdue")
	}
}

func TestAssignmentOverdueScenario(t *testing.T) {
	due := mustParse(t, "2025-12-01")
	cases := []struct {
		today string
		want  bool
	}{
		{"2025-11-30", false},
		{"2025-12-01", false},
		{"2025-12-02", true},
	}
	for _, tc := range cases {
		c := ClassifierFor(mustParse(t, tc.today))
		if got := c.IsOverdue(due); got != tc.want {
			t.Fatalf("today=%s: overdue=%v want %v", tc.today, got, tc.want)
		}
	}
}

func TestTodayAndTomorrowAreExclusive(t *testing.T) {
	now := time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC)
	c := NewClassifier(now)
	for offset := -3; offset <= 3; offset++ {
		d := c.Today().AddDays(offset)
		if c.IsToday(d) && c.IsTomorrow(d) {
			t.Fatalf("offset %d classified as both today and tomorrow", offset)
		}
	}
	if !c.IsTomorrow(mustParse(t, "2026-01-01")) {
		t.Fatal("expected year rollover tomorrow")
	}
}

func TestDaysUntil(t *testing.T) {
	c := ClassifierFor(mustParse(t, "2025-11-10"))
	if n := c.DaysUntil(mustParse(t, "2025-11-10T22:00:00-05:00")); n != 0 {
		t.Fatalf("expected 0, got %d", n)
	}
	if n := c.DaysUntil(mustParse(t, "2025-11-07")); n != -3 {
		t.Fatalf("expected -3, got %d", n)
	}
	if n := c.DaysUntil(Date{}); n != NoDueDate {
		t.Fatalf("expected sentinel, got %d", n)
	}
	if c.DueWithin(Date{}, 10000) {
		t.Fatal("invalid dates are outside every window")
	}
	if !c.DueWithin(mustParse(t, "2025-11-12"), 2) {
		t.Fatal("expected within window")
	}
}

func TestBucket(t *testing.T) {
	c := ClassifierFor(mustParse(t, "2025-11-10"))
	cases := map[string]Bucket{
		"2025-11-09": BucketOverdue,
		"2025-11-10": BucketToday,
		"2025-11-11": BucketTomorrow,
		"2025-11-20": BucketUpcoming,
	}
	for in, want := range cases {
		if got := c.Bucket(mustParse(t, in)); got != want {
			t.Fatalf("%s: got %s want %s", in, got, want)
		}
	}
	if got := c.Bucket(Date{}); got != BucketUndated {
		t.Fatalf("expected undated, got %s", got)
	}
}
