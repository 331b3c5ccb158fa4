package ical

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sandeepkv93/studyd/internal/agenda"
	"github.com/sandeepkv93/studyd/internal/model"
)

func TestWriteFileReplacesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "schedule.ics")
	src := agenda.Sources{Tasks: []model.Task{{ID: "t1", Title: "Essay", DueDate: "2025-11-20"}}}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	stats, err := WriteFile(path, src, fixedNow, Options{})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if stats.Events != 1 {
		t.Fatalf("events = %d", stats.Events)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	checkStructure(t, string(data))
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestWriteFileRejectsEmptyPath(t *testing.T) {
	if _, err := WriteFile("  ", agenda.Sources{}, fixedNow, Options{}); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("expected ErrEmptyPath, got %v", err)
	}
}
