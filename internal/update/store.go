package update

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/studyd/internal/storage"
)

const storeTimeout = 5 * time.Second

func loadSourcesCmd(store Store, userID string) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		var name string
		user, err := store.GetUser(ctx, userID)
		switch {
		case err == nil:
			name = user.Name
		case !errors.Is(err, storage.ErrNotFound):
			return SourcesLoadedMsg{Err: err}
		}
		src, err := store.LoadSources(ctx, userID)
		return SourcesLoadedMsg{Name: name, Sources: src, Err: err}
	}
}

func toggleTaskCmd(store Store, taskID string, completed bool) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		err := store.SetTaskCompleted(ctx, taskID, completed)
		return TaskToggledMsg{TaskID: taskID, Completed: completed, Err: err}
	}
}
