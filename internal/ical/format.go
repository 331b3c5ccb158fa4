package ical

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"
)

const maxLineOctets = 75

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
	"\r", `\n`,
)

// escapeText escapes a TEXT property value. Invalid UTF-8 is replaced with
// U+FFFD.
func escapeText(v string) string {
	return textEscaper.Replace(strings.ToValidUTF8(v, "\uFFFD"))
}

// lineWriter emits CRLF-terminated content lines folded at 75 octets. The
// first write error sticks and later writes are no-ops.
type lineWriter struct {
	w   *bufio.Writer
	err error
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{w: bufio.NewWriter(w)}
}

func (lw *lineWriter) line(name, value string) {
	lw.raw(name + ":" + value)
}

func (lw *lineWriter) text(name, value string) {
	lw.raw(name + ":" + escapeText(value))
}

func (lw *lineWriter) raw(content string) {
	if lw.err != nil {
		return
	}
	for i, chunk := range fold(content) {
		if i > 0 {
			chunk = " " + chunk
		}
		if _, err := lw.w.WriteString(chunk + "\r\n"); err != nil {
			lw.err = err
			return
		}
	}
}

func (lw *lineWriter) flush() error {
	if lw.err != nil {
		return lw.err
	}
	return lw.w.Flush()
}

// fold splits content so that each physical line, including the leading
// space on continuations, fits in 75 octets without splitting a rune.
func fold(content string) []string {
	if len(content) <= maxLineOctets {
		return []string{content}
	}
	var out []string
	limit := maxLineOctets
	for len(content) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		// No rune boundary in reach: cut at the byte limit.
		if cut == 0 {
			cut = limit
		}
		out = append(out, content[:cut])
		content = content[cut:]
		limit = maxLineOctets - 1
	}
	return append(out, content)
}
