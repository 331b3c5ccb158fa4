package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/studyd/internal/agenda"
	"github.com/sandeepkv93/studyd/internal/dates"
	"github.com/sandeepkv93/studyd/internal/model"
	"github.com/sandeepkv93/studyd/internal/views"
)

const (
	weekDays     = 7
	previewCount = 5
)

func (m Model) handleWeekKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		m.shiftWeeks(-1)
	case "l", "right":
		m.shiftWeeks(1)
	case "t":
		m.gotoDate(m.today())
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Rows)-1 {
			m.Cursor++
		}
	case "x":
		return m.toggleSelectedTask()
	case "r":
		m.Status = StatusBar{Text: "reloading"}
		return m, loadSourcesCmd(m.store, m.UserID)
	}
	return m, nil
}

func (m *Model) shiftWeeks(delta int) {
	m.WeekStart = m.WeekStart.AddDays(weekDays * delta)
	m.Cursor = 0
	m.rebuildRows()
	m.Status = StatusBar{Text: fmt.Sprintf("week of %s", m.WeekStart)}
}

// gotoDate shows the week containing d and selects its first event.
func (m *Model) gotoDate(d dates.Date) {
	m.WeekStart = weekStartOf(d)
	m.rebuildRows()
	m.Cursor = 0
	for i, r := range m.Rows {
		if !r.Date.Before(d) {
			m.Cursor = i
			break
		}
	}
	m.Status = StatusBar{Text: fmt.Sprintf("showing %s", d)}
}

func (m *Model) rebuildRows() {
	m.Rows = make([]Row, 0, len(m.Rows))
	for _, day := range agenda.EventsForRange(m.WeekStart, weekDays, m.Sources) {
		for _, ev := range day.Events {
			m.Rows = append(m.Rows, Row{Date: day.Date, Event: ev})
		}
	}
	if m.Cursor >= len(m.Rows) {
		m.Cursor = len(m.Rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m Model) currentRow() (Row, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Rows) {
		return Row{}, false
	}
	return m.Rows[m.Cursor], true
}

func (m Model) taskByID(id string) (model.Task, bool) {
	for _, t := range m.Sources.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func (m Model) toggleSelectedTask() (Model, tea.Cmd) {
	row, ok := m.currentRow()
	if !ok || row.Event.Kind != agenda.KindTask {
		m.Status = StatusBar{Text: "select a task to mark it done", IsError: true}
		return m, nil
	}
	task, ok := m.taskByID(row.Event.SourceID)
	if !ok {
		m.Status = StatusBar{Text: "task no longer exists", IsError: true}
		return m, nil
	}
	return m, toggleTaskCmd(m.store, task.ID, !task.Completed)
}

func (m *Model) applyTaskCompleted(id string, completed bool) {
	for i := range m.Sources.Tasks {
		if m.Sources.Tasks[i].ID == id {
			m.Sources.Tasks[i].Completed = completed
		}
	}
	m.rebuildRows()
}

// freeDays lists the days of the visible week with nothing on them.
func (m Model) freeDays() []string {
	busy := make(map[dates.Date]bool, weekDays)
	for _, r := range m.Rows {
		busy[r.Date] = true
	}
	var out []string
	for i := 0; i < weekDays; i++ {
		d := m.WeekStart.AddDays(i)
		if !busy[d] {
			out = append(out, d.Weekday().String()[:3])
		}
	}
	return out
}

func (m Model) detailData() views.DetailData {
	row, ok := m.currentRow()
	if !ok {
		return views.DetailData{}
	}
	ev := row.Event
	data := views.DetailData{
		Title:       ev.Title,
		Kind:        string(ev.Kind),
		When:        row.Date.String() + " " + ev.TimeLabel,
		Course:      ev.CourseLabel,
		Color:       ev.Color,
		Location:    ev.Location,
		Description: ev.Description,
		Recurring:   ev.Recurring,
		Completed:   ev.Completed,
	}
	if ev.Kind != agenda.KindTask {
		return data
	}
	task, ok := m.taskByID(ev.SourceID)
	if !ok || !task.Recurring() {
		return data
	}
	data.Recurring = true
	anchor, ok := task.Due()
	if !ok {
		return data
	}
	next, err := task.Recurrence.Preview(anchor, row.Date.AddDays(1), previewCount)
	if err != nil {
		return data
	}
	for _, d := range next {
		data.Upcoming = append(data.Upcoming, d.String())
	}
	return data
}

func (m Model) renderWeekView() string {
	return views.RenderWeekPanel(views.WeekPanelData{
		From:      m.WeekStart.String(),
		To:        m.WeekStart.AddDays(weekDays - 1).String(),
		TableView: m.weekTable.View(),
		FreeDays:  m.freeDays(),
		Empty:     len(m.Rows) == 0,
	})
}
