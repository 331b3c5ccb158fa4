package ical

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sandeepkv93/studyd/internal/agenda"
)

var ErrEmptyPath = errors.New("ical: export path is empty")

// WriteFile writes a Snapshot to path. The document is written to a sibling
// temp file and renamed into place, so readers never see a partial file.
func WriteFile(path string, src agenda.Sources, now time.Time, opts Options) (Stats, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Stats{}, ErrEmptyPath
	}
	var buf bytes.Buffer
	stats, err := Snapshot(&buf, src, now, opts)
	if err != nil {
		return stats, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return stats, err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return stats, err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return stats, err
	}
	return stats, nil
}
