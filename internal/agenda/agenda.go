// Package agenda merges assignments, tasks and class meetings into the
// ordered event list for a calendar day.
package agenda

import (
	"fmt"
	"sort"

	"github.com/sandeepkv93/studyd/internal/dates"
	"github.com/sandeepkv93/studyd/internal/model"
)

// FallbackColor is used for classes whose course has no color.
const FallbackColor = "#94a3b8"

// ClassEventID identifies the idx-th schedule slot of a course. Two slots
// starting at the same time still get distinct ids.
func ClassEventID(courseID string, idx int) string {
	return fmt.Sprintf("%s-class-%d", courseID, idx)
}

type Kind string

const (
	KindAssignment Kind = "assignment"
	KindTask       Kind = "task"
	KindClass      Kind = "class"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindAssignment, KindTask, KindClass:
		return true
	default:
		return false
	}
}

// Sources is one user's input records. It is read only.
type Sources struct {
	Assignments []model.Assignment
	Tasks       []model.Task
	Courses     []model.Course
	// Unreadable holds ids of stored records that could not be decoded and
	// are missing from the lists above.
	Unreadable []string
}

// CourseByID returns the course with id, or false when it is missing.
func (s Sources) CourseByID(id string) (model.Course, bool) {
	if id == "" {
		return model.Course{}, false
	}
	for _, c := range s.Courses {
		if c.ID == id {
			return c, true
		}
	}
	return model.Course{}, false
}

// CourseLabel resolves a course id to its code, or the neutral fallback.
func (s Sources) CourseLabel(id string) string {
	c, ok := s.CourseByID(id)
	if !ok {
		return model.DefaultCourseLabel
	}
	return c.Label()
}

// Event is a derived, never persisted calendar entry. Start and End are set
// only for classes.
type Event struct {
	ID          string      `json:"id"`
	Kind        Kind        `json:"type"`
	Title       string      `json:"title"`
	Date        dates.Date  `json:"-"`
	Start       model.Clock `json:"-"`
	End         model.Clock `json:"-"`
	TimeLabel   string      `json:"time"`
	Color       string      `json:"color,omitempty"`
	Location    string      `json:"location,omitempty"`
	Description string      `json:"description,omitempty"`
	SourceID    string      `json:"sourceId"`
	CourseLabel string      `json:"course"`
	Recurring   bool        `json:"recurring"`
	Completed   bool        `json:"completed"`
}

func (e Event) Timed() bool {
	return e.Kind == KindClass
}

// EventsForDate lists every occurrence on date: assignments and tasks due that
// day, recurring tasks repeating that day, then class meetings. Classes sort
// ahead of everything else; otherwise source order is kept.
func EventsForDate(date dates.Date, src Sources) []Event {
	events := make([]Event, 0)
	if !date.Valid() {
		return events
	}

	for _, a := range src.Assignments {
		due, ok := a.Due()
		if !ok || !due.Equal(date) {
			continue
		}
		label := src.CourseLabel(a.CourseID)
		color := ""
		if c, ok := src.CourseByID(a.CourseID); ok {
			color = c.Color
		}
		events = append(events, Event{
			ID:          a.ID,
			Kind:        KindAssignment,
			Title:       a.Title,
			Date:        date,
			TimeLabel:   "Due 11:59 PM",
			Color:       color,
			Description: a.Details,
			SourceID:    a.ID,
			CourseLabel: label,
			Completed:   a.Completed(),
		})
	}

	for _, t := range src.Tasks {
		due, ok := t.Due()
		if !ok {
			continue
		}
		switch {
		case due.Equal(date):
			events = append(events, taskEvent(t, date, t.ID, "Task", false))
		case t.Recurring() && t.Recurrence.RepeatsOn(due, date):
			events = append(events, taskEvent(t, date, t.ID+"-rec", "Recurring", true))
		}
	}

	for _, c := range src.Courses {
		color := c.Color
		if color == "" {
			color = FallbackColor
		}
		for idx, slot := range c.Schedule {
			wd, start, end, err := slot.Window()
			if err != nil || wd != date.Weekday() {
				continue
			}
			events = append(events, Event{
				ID:          ClassEventID(c.ID, idx),
				Kind:        KindClass,
				Title:       c.Label(),
				Date:        date,
				Start:       start,
				End:         end,
				TimeLabel:   start.String() + " - " + end.String(),
				Color:       color,
				Location:    slot.Location,
				Description: c.Name,
				SourceID:    c.ID,
				CourseLabel: c.Label(),
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Kind == KindClass && events[j].Kind != KindClass
	})
	return events
}

func taskEvent(t model.Task, date dates.Date, id, label string, recurring bool) Event {
	return Event{
		ID:          id,
		Kind:        KindTask,
		Title:       t.Title,
		Date:        date,
		TimeLabel:   label,
		Description: t.Notes,
		SourceID:    t.ID,
		CourseLabel: model.DefaultCourseLabel,
		Recurring:   recurring,
		Completed:   t.Completed,
	}
}

// Day groups the events of one date.
type Day struct {
	Date   dates.Date
	Events []Event
}

// EventsForRange calls EventsForDate once per day starting at from.
func EventsForRange(from dates.Date, days int, src Sources) []Day {
	if days < 0 {
		days = 0
	}
	out := make([]Day, 0, days)
	for i := 0; i < days; i++ {
		d := from.AddDays(i)
		out = append(out, Day{Date: d, Events: EventsForDate(d, src)})
	}
	return out
}

// Undated lists assignment and task ids whose due date does not parse. They
// never appear in any day's events; callers log them.
func Undated(src Sources) []string {
	var ids []string
	for _, a := range src.Assignments {
		if _, ok := a.Due(); !ok {
			ids = append(ids, a.ID)
		}
	}
	for _, t := range src.Tasks {
		if _, ok := t.Due(); !ok {
			ids = append(ids, t.ID)
		}
	}
	return ids
}
