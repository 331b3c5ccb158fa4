package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/studyd/internal/agenda"
	"github.com/sandeepkv93/studyd/internal/dates"
	"github.com/sandeepkv93/studyd/internal/storage"
)

type View string

const (
	ViewWeek   View = "Week"
	ViewDigest View = "Digest"
)

// Store is what the agenda browser reads and writes.
type Store interface {
	GetUser(ctx context.Context, id string) (storage.User, error)
	LoadSources(ctx context.Context, userID string) (agenda.Sources, error)
	SetTaskCompleted(ctx context.Context, id string, completed bool) error
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Week   string
	Digest string
	Help   string
	Quit   string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

// Row is one line of the week table.
type Row struct {
	Date  dates.Date
	Event agenda.Event
}

type Model struct {
	CurrentView View
	Palette     CommandPaletteState
	HelpVisible bool
	Status      StatusBar
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error

	UserID    string
	UserName  string
	Sources   agenda.Sources
	WeekStart dates.Date
	Rows      []Row
	Cursor    int
	Loaded    bool

	store Store
	loc   *time.Location
	now   func() time.Time

	weekTable      table.Model
	commandInput   textinput.Model
	helpModel      help.Model
	detailViewport viewport.Model
	digestViewport viewport.Model
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// SourcesLoadedMsg carries a fresh read of the user's records.
type SourcesLoadedMsg struct {
	Name    string
	Sources agenda.Sources
	Err     error
}

type TaskToggledMsg struct {
	TaskID    string
	Completed bool
	Err       error
}

func NewModel(store Store, cfg RuntimeConfig) Model {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	m := Model{
		CurrentView: ViewWeek,
		UserID:      cfg.UserID,
		store:       store,
		loc:         loc,
		now:         now,
		Keys: GlobalKeyMap{
			Week:   "1",
			Digest: "2",
			Help:   "?",
			Quit:   "q",
		},
	}
	m.WeekStart = weekStartOf(m.today())
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

func (m Model) today() dates.Date {
	return dates.FromTime(m.now().In(m.loc))
}

// weekStartOf is the Monday on or before d.
func weekStartOf(d dates.Date) dates.Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}
