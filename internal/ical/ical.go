// Package ical renders a user's assignments, tasks and class schedule as an
// iCalendar document. Snapshot and Feed share one renderer, so UIDs and
// event fields match between a downloaded file and a subscription.
package ical

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sandeepkv93/studyd/internal/agenda"
	"github.com/sandeepkv93/studyd/internal/dates"
	"github.com/sandeepkv93/studyd/internal/model"
)

const (
	ProdID    = "-//College Organizer//EN"
	UIDDomain = "collegeorganizer.app"

	// DefaultHorizonDays bounds every RRULE: one year past serialization day.
	DefaultHorizonDays = 364

	DefaultCalendarName = "My Study Schedule"

	stampLayout = "20060102T150405Z"
)

var byDay = map[time.Weekday]string{
	time.Sunday:    "SU",
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
}

type Options struct {
	// Location is the zone class times are entered in. Defaults to now's
	// location.
	Location *time.Location
	// HorizonDays is how far past today recurring series run. Zero means
	// DefaultHorizonDays.
	HorizonDays int
	// CalendarName and feed metadata are only written by Feed.
	CalendarName string
}

// Stats reports what a render produced.
type Stats struct {
	Events  int
	Skipped []string
}

// Snapshot writes a one-shot export.
func Snapshot(w io.Writer, src agenda.Sources, now time.Time, opts Options) (Stats, error) {
	return render(w, src, now, opts, false)
}

// Feed writes the subscription form: the same events as Snapshot plus
// calendar name and zone headers.
func Feed(w io.Writer, src agenda.Sources, now time.Time, opts Options) (Stats, error) {
	return render(w, src, now, opts, true)
}

// ItemUID is the UID of an assignment or task.
func ItemUID(id string) string {
	return id + "@" + UIDDomain
}

// ClassUID is the UID of the idx-th schedule slot of a course.
func ClassUID(courseID string, idx int) string {
	return fmt.Sprintf("%s-class-%d@%s", courseID, idx, UIDDomain)
}

func render(w io.Writer, src agenda.Sources, now time.Time, opts Options, feed bool) (Stats, error) {
	loc := opts.Location
	if loc == nil {
		loc = now.Location()
	}
	now = now.In(loc)
	horizon := opts.HorizonDays
	if horizon <= 0 {
		horizon = DefaultHorizonDays
	}
	until := dates.FromTime(now).AddDays(horizon)
	stamp := now.UTC().Format(stampLayout)

	lw := newLineWriter(w)
	stats := Stats{Skipped: append([]string(nil), src.Unreadable...)}

	lw.line("BEGIN", "VCALENDAR")
	lw.line("VERSION", "2.0")
	lw.line("PRODID", ProdID)
	lw.line("CALSCALE", "GREGORIAN")
	lw.line("METHOD", "PUBLISH")
	if feed {
		name := opts.CalendarName
		if name == "" {
			name = DefaultCalendarName
		}
		lw.text("X-WR-CALNAME", name)
		lw.line("X-WR-TIMEZONE", loc.String())
	}

	for _, a := range src.Assignments {
		due, ok := a.Due()
		if !ok {
			stats.Skipped = append(stats.Skipped, a.ID)
			continue
		}
		details := a.Details
		if strings.TrimSpace(details) == "" {
			details = "None"
		}
		writeDueItem(lw, dueItem{
			id:          a.ID,
			title:       a.Title,
			due:         due,
			suffix:      "Due",
			description: fmt.Sprintf("Assignment for %s\nDetails: %s", src.CourseLabel(a.CourseID), details),
			completed:   a.Completed(),
		}, stamp, until)
		stats.Events++
	}

	for _, t := range src.Tasks {
		due, ok := t.Due()
		if !ok {
			stats.Skipped = append(stats.Skipped, t.ID)
			continue
		}
		item := dueItem{
			id:          t.ID,
			title:       t.Title,
			due:         due,
			suffix:      "Task",
			description: "Study Task: " + titleOrUntitled(t.Title),
			completed:   t.Completed,
		}
		if t.Recurring() {
			item.rule = t.Recurrence
		}
		writeDueItem(lw, item, stamp, until)
		stats.Events++
	}

	untilUTC := until.At(23, 59, loc).UTC().Format(stampLayout)
	for _, c := range src.Courses {
		for idx, slot := range c.Schedule {
			start, end, err := slot.NextOccurrence(now)
			if err != nil {
				stats.Skipped = append(stats.Skipped, ClassUID(c.ID, idx))
				continue
			}
			lw.line("BEGIN", "VEVENT")
			lw.line("DTSTART", start.UTC().Format(stampLayout))
			lw.line("DTEND", end.UTC().Format(stampLayout))
			lw.text("SUMMARY", c.Label()+" Class")
			if c.Name != "" {
				lw.text("DESCRIPTION", c.Name)
			}
			if slot.Location != "" {
				lw.text("LOCATION", slot.Location)
			}
			lw.line("RRULE", "FREQ=WEEKLY;BYDAY="+byDay[start.Weekday()]+";UNTIL="+untilUTC)
			lw.line("UID", ClassUID(c.ID, idx))
			lw.line("DTSTAMP", stamp)
			writeAlarm(lw, "-PT15M", "Class starts in 15 minutes")
			lw.line("END", "VEVENT")
			stats.Events++
		}
	}

	lw.line("END", "VCALENDAR")
	return stats, lw.flush()
}

type dueItem struct {
	id          string
	title       string
	due         dates.Date
	suffix      string
	description string
	completed   bool
	rule        *model.RecurrenceRule
}

func titleOrUntitled(title string) string {
	if strings.TrimSpace(title) == "" {
		return "Untitled"
	}
	return title
}

func writeDueItem(lw *lineWriter, it dueItem, stamp string, until dates.Date) {
	title := titleOrUntitled(it.title)
	status := "TENTATIVE"
	if it.completed {
		status = "CONFIRMED"
	}

	lw.line("BEGIN", "VEVENT")
	lw.line("DTSTART;VALUE=DATE", it.due.ICal())
	lw.line("DTEND;VALUE=DATE", it.due.AddDays(1).ICal())
	lw.text("SUMMARY", title+" ("+it.suffix+")")
	lw.text("DESCRIPTION", it.description)
	lw.line("STATUS", status)
	lw.line("UID", ItemUID(it.id))
	lw.line("DTSTAMP", stamp)
	if it.rule != nil {
		// A series anchored past the horizon still ends on or after its start.
		if until.Before(it.due) {
			until = it.due
		}
		lw.line("RRULE", recurrenceRule(*it.rule, it.due, until))
	}
	writeAlarm(lw, "-P1D", "Reminder: "+title+" is due tomorrow!")
	lw.line("END", "VEVENT")
}

func recurrenceRule(r model.RecurrenceRule, anchor, until dates.Date) string {
	var b strings.Builder
	switch r.Frequency {
	case model.FrequencyDaily:
		b.WriteString("FREQ=DAILY")
	default:
		b.WriteString("FREQ=WEEKLY;BYDAY=")
		b.WriteString(byDay[anchor.Weekday()])
	}
	if r.Step() > 1 {
		fmt.Fprintf(&b, ";INTERVAL=%d", r.Step())
	}
	b.WriteString(";UNTIL=")
	b.WriteString(until.ICal())
	return b.String()
}

func writeAlarm(lw *lineWriter, trigger, description string) {
	lw.line("BEGIN", "VALARM")
	lw.line("TRIGGER", trigger)
	lw.line("ACTION", "DISPLAY")
	lw.text("DESCRIPTION", description)
	lw.line("END", "VALARM")
}
