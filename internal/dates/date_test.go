package dates

import (
	"testing"
	"time"
)

func TestParseStripsClockAndZone(t *testing.T) {
	want := New(2025, time.November, 10)
	inputs := []string{
		"2025-11-10",
		"2025-11-10T00:00:00Z",
		"2025-11-10T23:59:59-08:00",
		"2025-11-10T01:30:00+14:00",
		"2025-11-10 18:45:00",
		"  2025-11-10  ",
	}
	for _, in := range inputs {
		got, ok := Parse(in)
		if !ok {
			t.Fatalf("parse %q: expected ok", in)
		}
		if got.Compare(want) != 0 {
			t.Fatalf("parse %q: got %s want %s", in, got, want)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "20251110", "2025/11/10", "2025-13-01", "2025-02-30", "soon", "25-11-10"} {
		if _, ok := Parse(in); ok {
			t.Fatalf("parse %q: expected failure", in)
		}
	}
}

func TestNormalizeFallsBackToTodayFlaggedInvalid(t *testing.T) {
	now := time.Date(2026, 3, 4, 22, 0, 0, 0, time.UTC)
	d := Normalize("not a date", now)
	if d.Valid() {
		t.Fatal("expected invalid flag")
	}
	if d.String() != "2026-03-04" {
		t.Fatalf("expected display fallback to today, got %s", d)
	}

	ok := Normalize("2026-03-05T10:00:00Z", now)
	if !ok.Valid() || ok.String() != "2026-03-05" {
		t.Fatalf("unexpected normalized value: %s valid=%v", ok, ok.Valid())
	}
}

func TestFromTimeKeepsLocalDayWestOfUTC(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 23:30 local on Nov 10 is already Nov 11 in UTC.
	local := time.Date(2025, 11, 10, 23, 30, 0, 0, la)
	if got := FromTime(local).String(); got != "2025-11-10" {
		t.Fatalf("expected local day, got %s", got)
	}
}

func TestAddDaysAndDaysSinceAcrossDST(t *testing.T) {
	start := New(2026, time.March, 7) // US DST starts Mar 8
	end := start.AddDays(2)
	if end.String() != "2026-03-09" {
		t.Fatalf("unexpected add result: %s", end)
	}
	if n := end.DaysSince(start); n != 2 {
		t.Fatalf("expected 2 days, got %d", n)
	}
	if n := start.DaysSince(end); n != -2 {
		t.Fatalf("expected -2 days, got %d", n)
	}
}

func TestICalRoundTripAcrossDSTBoundary(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	d := New(2026, time.October, 28)
	for i := 0; i < 14; i++ { // spans Nov 1 fall-back
		cur := d.AddDays(i)
		back, err := ParseICal(cur.ICal())
		if err != nil {
			t.Fatalf("parse ical: %v", err)
		}
		if back.Compare(cur) != 0 {
			t.Fatalf("round trip shifted %s -> %s", cur, back)
		}
		if got := FromTime(cur.In(loc)); got.Compare(cur) != 0 {
			t.Fatalf("local midnight shifted %s -> %s", cur, got)
		}
	}
}

func TestWeekday(t *testing.T) {
	if wd := New(2025, time.November, 10).Weekday(); wd != time.Monday {
		t.Fatalf("expected Monday, got %s", wd)
	}
}
