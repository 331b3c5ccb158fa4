package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/studyd/internal/agenda"
	"github.com/sandeepkv93/studyd/internal/views"
)

func (m Model) Init() tea.Cmd {
	return loadSourcesCmd(m.store, m.UserID)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.SetValue("")
			m.commandInput.Focus()
			m.Status = StatusBar{Text: "command palette active"}
			return m, nil
		case m.Keys.Week:
			m.CurrentView = ViewWeek
			return m, nil
		case m.Keys.Digest:
			m.CurrentView = ViewDigest
			m.refreshDigest()
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown"}
			} else {
				m.Status = StatusBar{Text: "help hidden"}
			}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}

		switch m.CurrentView {
		case ViewWeek:
			return m.handleWeekKey(typed)
		case ViewDigest:
			var cmd tea.Cmd
			m.digestViewport, cmd = m.digestViewport.Update(typed)
			return m, cmd
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
			if typed.View == ViewDigest {
				m.refreshDigest()
			}
		}
		return m, nil
	case SourcesLoadedMsg:
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: fmt.Sprintf("load %s: %v", m.UserID, typed.Err), IsError: true}
			return m, nil
		}
		m.UserName = typed.Name
		m.Sources = typed.Sources
		m.Loaded = true
		m.rebuildRows()
		if m.CurrentView == ViewDigest {
			m.refreshDigest()
		}
		m.Status = StatusBar{Text: loadedStatus(typed.Sources)}
		return m, nil
	case TaskToggledMsg:
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: fmt.Sprintf("update %s: %v", typed.TaskID, typed.Err), IsError: true}
			return m, nil
		}
		m.applyTaskCompleted(typed.TaskID, typed.Completed)
		state := "open"
		if typed.Completed {
			state = "done"
		}
		m.Status = StatusBar{Text: fmt.Sprintf("task %s marked %s", typed.TaskID, state)}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}
	return m, nil
}

func loadedStatus(src agenda.Sources) string {
	text := fmt.Sprintf("loaded %d assignments, %d tasks, %d courses",
		len(src.Assignments), len(src.Tasks), len(src.Courses))
	if undated := agenda.Undated(src); len(undated) > 0 {
		text += fmt.Sprintf(" (%d without a due date: %s)", len(undated), strings.Join(undated, ", "))
	}
	return text
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	var left, right string
	switch m.CurrentView {
	case ViewWeek:
		left = m.renderWeekView()
		right = m.detailViewport.View()
	case ViewDigest:
		left = m.renderDigestView()
	}
	right += views.RenderCommandPalette(m.Palette.Active, m.Palette.Input) + m.renderHelpIfVisible()

	user := m.UserName
	if user == "" {
		user = m.UserID
	}
	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("studyd | user: %s | view: %s", user, m.CurrentView),
		LeftPane:   left,
		RightPane:  right,
		StatusLine: status,
		StatusErr:  m.Status.IsError,
		Footer: fmt.Sprintf("keys: %s week | %s digest | / cmd | %s help | %s quit",
			m.Keys.Week, m.Keys.Digest, m.Keys.Help, m.Keys.Quit),
	})
}

func isKnownView(v View) bool {
	switch v {
	case ViewWeek, ViewDigest:
		return true
	default:
		return false
	}
}
