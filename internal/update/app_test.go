package update

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/studyd/internal/agenda"
	"github.com/sandeepkv93/studyd/internal/dates"
	"github.com/sandeepkv93/studyd/internal/model"
	"github.com/sandeepkv93/studyd/internal/storage"
)

// Wednesday.
var appNow = time.Date(2025, 11, 12, 9, 0, 0, 0, time.UTC)

type fakeStore struct {
	user      storage.User
	userErr   error
	sources   agenda.Sources
	loadErr   error
	toggleErr error
	toggled   map[string]bool
}

func (f *fakeStore) GetUser(context.Context, string) (storage.User, error) {
	return f.user, f.userErr
}

func (f *fakeStore) LoadSources(context.Context, string) (agenda.Sources, error) {
	return f.sources, f.loadErr
}

func (f *fakeStore) SetTaskCompleted(_ context.Context, id string, completed bool) error {
	if f.toggleErr != nil {
		return f.toggleErr
	}
	if f.toggled == nil {
		f.toggled = map[string]bool{}
	}
	f.toggled[id] = completed
	return nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		user: storage.User{ID: "u1", Name: "Ada"},
		sources: agenda.Sources{Tasks: []model.Task{
			{ID: "t1", UserID: "u1", Title: "Read chapter 4", DueDate: "2025-11-12"},
			{ID: "t2", UserID: "u1", Title: "Lab report", DueDate: "2025-11-13"},
			{ID: "t3", UserID: "u1", Title: "Someday", DueDate: "later"},
		}},
	}
}

func newTestModel(store Store) Model {
	return NewModel(store, RuntimeConfig{UserID: "u1", Location: time.UTC, Now: func() time.Time { return appNow }})
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

// run feeds the message produced by cmd back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	next, _ := send(t, m, cmd())
	return next
}

func keys(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func loaded(t *testing.T, store *fakeStore) Model {
	t.Helper()
	m := newTestModel(store)
	return run(t, m, m.Init())
}

func TestNewModelDefaults(t *testing.T) {
	m := newTestModel(nil)
	if m.CurrentView != ViewWeek {
		t.Fatalf("expected default view %q, got %q", ViewWeek, m.CurrentView)
	}
	if m.WeekStart != dates.New(2025, time.November, 10) {
		t.Fatalf("week should start on Monday, got %s", m.WeekStart)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
	if m.Init() != nil {
		t.Fatalf("no store means nothing to load")
	}
}

func TestInitLoadsSources(t *testing.T) {
	m := loaded(t, newFakeStore())
	if !m.Loaded || m.UserName != "Ada" {
		t.Fatalf("expected loaded model for Ada, got loaded=%v name=%q", m.Loaded, m.UserName)
	}
	if len(m.Rows) != 2 || m.Rows[0].Event.SourceID != "t1" || m.Rows[1].Event.SourceID != "t2" {
		t.Fatalf("unexpected rows: %+v", m.Rows)
	}
	if !strings.Contains(m.Status.Text, "1 without a due date: t3") {
		t.Fatalf("undated task should be reported, got %q", m.Status.Text)
	}
	if !strings.Contains(m.View(), "Read chapter 4") {
		t.Fatalf("week view should list the task")
	}
}

func TestInitToleratesUnknownUser(t *testing.T) {
	store := newFakeStore()
	store.userErr = storage.ErrNotFound
	m := loaded(t, store)
	if !m.Loaded || m.UserName != "" {
		t.Fatalf("unknown user should still load, got loaded=%v name=%q", m.Loaded, m.UserName)
	}
}

func TestLoadErrorSetsStatus(t *testing.T) {
	store := newFakeStore()
	store.loadErr = errors.New("db locked")
	m := loaded(t, store)
	if m.Loaded || !m.Status.IsError || m.LastError == nil {
		t.Fatalf("expected load error, got %+v", m.Status)
	}
}

func TestWeekNavigationKeys(t *testing.T) {
	m := loaded(t, newFakeStore())
	m = keys(t, m, "l")
	if m.WeekStart != dates.New(2025, time.November, 17) || len(m.Rows) != 0 {
		t.Fatalf("expected empty next week, got %s with %d rows", m.WeekStart, len(m.Rows))
	}
	if !strings.Contains(m.View(), "nothing scheduled") {
		t.Fatalf("empty week should say so:\n%s", m.View())
	}
	m = keys(t, m, "hh")
	if m.WeekStart != dates.New(2025, time.November, 3) {
		t.Fatalf("expected two weeks back, got %s", m.WeekStart)
	}
	m = keys(t, m, "t")
	if m.WeekStart != dates.New(2025, time.November, 10) || m.Cursor != 0 {
		t.Fatalf("today should return to the current week, got %s", m.WeekStart)
	}
	m = keys(t, m, "j")
	if m.Cursor != 1 {
		t.Fatalf("expected cursor 1, got %d", m.Cursor)
	}
	m = keys(t, m, "jjk")
	if m.Cursor != 0 {
		t.Fatalf("cursor should clamp and move back, got %d", m.Cursor)
	}
}

func TestToggleTaskCompletion(t *testing.T) {
	store := newFakeStore()
	m := loaded(t, store)

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	m = run(t, m, cmd)
	if !store.toggled["t1"] {
		t.Fatalf("store should have been updated, got %+v", store.toggled)
	}
	if !m.Rows[0].Event.Completed || !strings.Contains(m.Status.Text, "t1 marked done") {
		t.Fatalf("row should show completion, got %+v / %q", m.Rows[0].Event, m.Status.Text)
	}

	store.toggleErr = errors.New("read-only")
	m, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	m = run(t, m, cmd)
	if !m.Status.IsError || !m.Rows[0].Event.Completed {
		t.Fatalf("failed update must keep state, got %+v", m.Status)
	}
}

func TestPaletteGotoAndStep(t *testing.T) {
	m := loaded(t, newFakeStore())
	m = keys(t, m, "/goto 2025-12-03")
	if !m.Palette.Active || m.Palette.Input != "goto 2025-12-03" {
		t.Fatalf("palette should capture input, got %+v", m.Palette)
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Palette.Active || m.WeekStart != dates.New(2025, time.December, 1) {
		t.Fatalf("goto should show the week of Dec 1, got %s", m.WeekStart)
	}

	m = keys(t, m, "/prev 3")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.WeekStart != dates.New(2025, time.November, 10) {
		t.Fatalf("prev 3 should go back three weeks, got %s", m.WeekStart)
	}

	m = keys(t, m, "/goto soon")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Status.IsError {
		t.Fatalf("bad date should surface an error")
	}

	m = keys(t, m, "/today")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Palette.Active || m.Palette.Input != "" {
		t.Fatalf("esc should close the palette")
	}
}

func TestPaletteDoneAndDigest(t *testing.T) {
	store := newFakeStore()
	m := loaded(t, store)

	m = keys(t, m, "/done t2")
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, m, cmd)
	if !store.toggled["t2"] {
		t.Fatalf("done should complete t2")
	}

	m = keys(t, m, "/done nope")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Status.IsError {
		t.Fatalf("unknown task should be an error")
	}

	m = keys(t, m, "/digest")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.CurrentView != ViewDigest {
		t.Fatalf("expected digest view, got %q", m.CurrentView)
	}
	// t2 is done now, so only t1 is due soon.
	if len(m.buildDigest().Items) != 1 || !strings.Contains(m.View(), "digest: 1 due soon") {
		t.Fatalf("unexpected digest view:\n%s", m.View())
	}
}

func TestPaletteExportWritesCalendar(t *testing.T) {
	m := loaded(t, newFakeStore())
	path := filepath.Join(t.TempDir(), "out", "week.ics")

	m = keys(t, m, "/export "+path)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Status.IsError || !strings.Contains(m.Status.Text, "exported 2 events") {
		t.Fatalf("unexpected status %+v", m.Status)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(data), "BEGIN:VCALENDAR") || !strings.Contains(string(data), "UID:t1@") {
		t.Fatalf("unexpected export:\n%s", data)
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp file should be renamed away")
	}
}

func TestViewSwitchHelpAndQuit(t *testing.T) {
	m := loaded(t, newFakeStore())
	m = keys(t, m, "2")
	if m.CurrentView != ViewDigest {
		t.Fatalf("expected digest view")
	}
	m, _ = send(t, m, SwitchViewMsg{View: "Nowhere"})
	if m.CurrentView != ViewDigest {
		t.Fatalf("unknown view should be ignored")
	}
	m = keys(t, m, "1?")
	if m.CurrentView != ViewWeek || !m.HelpVisible || !strings.Contains(m.View(), "toggle task done") {
		t.Fatalf("expected week view with help")
	}
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !m.Quitting || cmd == nil {
		t.Fatalf("q should quit")
	}
}
