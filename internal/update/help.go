package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/studyd/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		HelpView:    m.helpModel.View(helpKeyMap{short: bindings, full: [][]key.Binding{bindings}}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Week, Action: "week agenda"},
		{Key: m.Keys.Digest, Action: "daily digest"},
		{Key: "/", Action: "command palette (goto, today, next, prev, export, done, digest)"},
		{Key: m.Keys.Help, Action: "toggle help"},
		{Key: m.Keys.Quit, Action: "quit"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewWeek:
		return []KeyBinding{
			{Key: "h/l", Action: "previous/next week"},
			{Key: "t", Action: "jump to today"},
			{Key: "j/k", Action: "move selection"},
			{Key: "x", Action: "toggle task done"},
			{Key: "r", Action: "reload from store"},
		}
	case ViewDigest:
		return []KeyBinding{{Key: "j/k", Action: "scroll"}}
	default:
		return nil
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.viewBindings()))
	for _, kb := range append(m.globalBindings(), m.viewBindings()...) {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
