package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/studyd/internal/commands"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	}
	if msg.Type == tea.KeyRunes {
		m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
	} else {
		m.commandInput, _ = m.commandInput.Update(msg)
	}
	m.Palette.Input = m.commandInput.Value()
	return m, nil
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var follow tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Goto: func(a commands.GotoArgs) (commands.Result, error) {
			m.CurrentView = ViewWeek
			m.gotoDate(a.Date)
			return commands.Result{Message: fmt.Sprintf("showing week of %s", m.WeekStart)}, nil
		},
		Today: func() (commands.Result, error) {
			m.CurrentView = ViewWeek
			m.gotoDate(m.today())
			return commands.Result{Message: fmt.Sprintf("today is %s", m.today())}, nil
		},
		Step: func(weeks int) (commands.Result, error) {
			m.CurrentView = ViewWeek
			m.shiftWeeks(weeks)
			return commands.Result{Message: fmt.Sprintf("showing week of %s", m.WeekStart)}, nil
		},
		Export: func(a commands.ExportArgs) (commands.Result, error) {
			stats, err := m.exportSnapshot(a.Path)
			if err != nil {
				return commands.Result{}, fmt.Errorf("export %s: %w", a.Path, err)
			}
			msg := fmt.Sprintf("exported %d events to %s", stats.Events, a.Path)
			if len(stats.Skipped) > 0 {
				msg += fmt.Sprintf(" (%d skipped)", len(stats.Skipped))
			}
			return commands.Result{Message: msg}, nil
		},
		Done: func(a commands.DoneArgs) (commands.Result, error) {
			task, ok := m.taskByID(a.TaskID)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task %s", a.TaskID)}
			}
			follow = toggleTaskCmd(m.store, task.ID, !task.Completed)
			return commands.Result{Message: fmt.Sprintf("updating %s", task.Title)}, nil
		},
		Digest: func() (commands.Result, error) {
			m.CurrentView = ViewDigest
			m.refreshDigest()
			return commands.Result{Message: "daily digest"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	return m, follow
}
