package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type WeekPanelData struct {
	From      string
	To        string
	TableView string
	FreeDays  []string
	Empty     bool
}

type DetailData struct {
	Title       string
	Kind        string
	When        string
	Course      string
	Color       string
	Location    string
	Description string
	Recurring   bool
	Completed   bool
	Upcoming    []string
}

type DigestPanelData struct {
	ViewportView string
	Items        int
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderWeekPanel(data WeekPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("week: %s .. %s\n", data.From, data.To))
	b.WriteString("actions: [h/l]week [t]today [j/k]move [x]done [r]reload\n")
	if data.Empty {
		b.WriteString("(nothing scheduled this week)")
		return b.String()
	}
	b.WriteString(data.TableView + "\n")
	if len(data.FreeDays) > 0 {
		b.WriteString("free: " + strings.Join(data.FreeDays, ", "))
	}
	return strings.TrimSpace(b.String())
}

func RenderDetailPane(data DetailData) string {
	if strings.TrimSpace(data.Title) == "" {
		return "details:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("details:\n")
	title := data.Title
	if data.Color != "" {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color(data.Color)).Render("■ ") + title
	}
	b.WriteString(title + "\n")
	b.WriteString(fmt.Sprintf("kind: %s\n", data.Kind))
	b.WriteString(fmt.Sprintf("when: %s\n", data.When))
	b.WriteString(fmt.Sprintf("course: %s\n", data.Course))
	if data.Location != "" {
		b.WriteString(fmt.Sprintf("where: %s\n", data.Location))
	}
	if data.Description != "" {
		b.WriteString(fmt.Sprintf("notes: %s\n", data.Description))
	}
	if data.Completed {
		b.WriteString("status: done\n")
	}
	if data.Recurring || len(data.Upcoming) > 0 {
		b.WriteString("repeats:\n")
		if len(data.Upcoming) == 0 {
			b.WriteString("  (no further dates)\n")
		}
		for _, d := range data.Upcoming {
			b.WriteString("- " + d + "\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderDigestPanel(data DigestPanelData) string {
	return fmt.Sprintf("digest: %d due soon\nactions: [j/k]scroll [1]week\n%s", data.Items, data.ViewportView)
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("\nhelp (%s):\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
