// Package transport delivers raw text lines from the sensor board. Sources are
// polled: ReadLines returns whatever complete lines are available right now
// and never waits for more.
package transport

import (
	"bytes"
	"errors"
	"strings"
)

// MaxLineLength bounds an unterminated line. Longer input is discarded up to
// the next newline.
const MaxLineLength = 4096

// ErrExhausted is returned by sources that have no more input, such as a
// replay file that reached EOF.
var ErrExhausted = errors.New("source exhausted")

// Source is a pollable line source.
type Source interface {
	// ReadLines returns the complete lines available now, possibly none.
	ReadLines() ([]string, error)
	Close() error
}

// LineBuffer accumulates bytes and splits them into trimmed lines.
// Invalid UTF-8 is replaced rather than rejected, since boards often print
// Latin-1 degree signs. Not safe for concurrent use.
type LineBuffer struct {
	pending    []byte
	lines      []string
	discarding bool
	// Dropped counts lines discarded for exceeding MaxLineLength.
	Dropped int
}

// Write appends data. It never fails.
func (b *LineBuffer) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			if b.discarding {
				return n, nil
			}
			b.pending = append(b.pending, p...)
			if len(b.pending) > MaxLineLength {
				b.Dropped++
				b.pending = b.pending[:0]
				b.discarding = true
			}
			return n, nil
		}

		seg := p[:i]
		p = p[i+1:]
		if b.discarding {
			b.discarding = false
			continue
		}

		b.pending = append(b.pending, seg...)
		if len(b.pending) > MaxLineLength {
			b.Dropped++
		} else if line := cleanLine(b.pending); line != "" {
			b.lines = append(b.lines, line)
		}
		b.pending = b.pending[:0]
	}
	return n, nil
}

// Lines removes and returns every complete line. Blank lines are skipped.
func (b *LineBuffer) Lines() []string {
	out := b.lines
	b.lines = nil
	return out
}

// Pending returns the number of buffered bytes not yet forming a line.
func (b *LineBuffer) Pending() int {
	return len(b.pending)
}

// Reset drops buffered data, for use after a reconnect.
func (b *LineBuffer) Reset() {
	b.pending = b.pending[:0]
	b.lines = nil
	b.discarding = false
}

func cleanLine(raw []byte) string {
	s := strings.ToValidUTF8(string(raw), "\uFFFD")
	return strings.TrimSpace(s)
}
