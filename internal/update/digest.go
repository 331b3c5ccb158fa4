package update

import (
	"github.com/sandeepkv93/studyd/internal/dates"
	"github.com/sandeepkv93/studyd/internal/reminder"
	"github.com/sandeepkv93/studyd/internal/views"
)

func (m Model) buildDigest() reminder.Digest {
	return reminder.BuildDigest(m.UserName, m.Sources.Tasks, dates.ClassifierFor(m.today()))
}

func (m *Model) refreshDigest() {
	m.digestViewport.SetContent(views.RenderMarkdown(m.buildDigest().Markdown(), views.PaneWidth))
	m.digestViewport.GotoTop()
}

func (m Model) renderDigestView() string {
	return views.RenderDigestPanel(views.DigestPanelData{
		ViewportView: m.digestViewport.View(),
		Items:        len(m.buildDigest().Items),
	})
}
