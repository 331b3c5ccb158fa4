package update

import (
	"github.com/sandeepkv93/studyd/internal/ical"
)

func (m Model) exportSnapshot(path string) (ical.Stats, error) {
	return ical.WriteFile(path, m.Sources, m.now().In(m.loc), ical.Options{Location: m.loc})
}
