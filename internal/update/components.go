package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/studyd/internal/agenda"
	"github.com/sandeepkv93/studyd/internal/views"
)

const (
	tableHeight  = 14
	digestHeight = 18
	detailWidth  = views.PaneWidth - 16
)

func (m *Model) initBubbleComponents() {
	cols := []table.Column{
		{Title: "Day", Width: 10},
		{Title: "Time", Width: 12},
		{Title: "Kind", Width: 6},
		{Title: "Title", Width: 18},
	}
	m.weekTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(tableHeight))

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.helpModel = help.New()
	m.detailViewport = viewport.New(detailWidth, tableHeight)
	m.digestViewport = viewport.New(views.PaneWidth, digestHeight)
}

// syncBubbleData pushes model state into the bubbles components.
func (m *Model) syncBubbleData() {
	rows := make([]table.Row, 0, len(m.Rows))
	for _, r := range m.Rows {
		title := r.Event.Title
		if r.Event.Completed {
			title = "[x] " + title
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%s %02d-%02d", r.Date.Weekday().String()[:3], int(r.Date.Month()), r.Date.Day()),
			r.Event.TimeLabel,
			kindLabel(r.Event.Kind),
			title,
		})
	}
	m.weekTable.SetRows(rows)
	if len(rows) > 0 && m.Cursor < len(rows) {
		m.weekTable.SetCursor(m.Cursor)
	}

	m.commandInput.SetValue(m.Palette.Input)
	if m.Palette.Active {
		m.commandInput.Focus()
	}
	m.detailViewport.SetContent(views.RenderDetailPane(m.detailData()))
}

func kindLabel(k agenda.Kind) string {
	switch k {
	case agenda.KindAssignment:
		return "DUE"
	case agenda.KindClass:
		return "CLASS"
	default:
		return "TASK"
	}
}
