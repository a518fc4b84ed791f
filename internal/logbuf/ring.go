// Package logbuf provides a bounded in-memory ring of recent log lines.
//
// The ring implements io.Writer so it can sit behind a
// zerolog.MultiLevelWriter next to the console writer: every log event lands
// both on stderr and in the ring, and the /logs endpoint reads the ring back
// without touching the filesystem. The ring is a plain injected value owned by
// cmd/server; nothing in this package holds global state.
package logbuf

import (
	"strings"
	"sync"
)

// DefaultCapacity is used when a Ring is constructed with a non-positive
// capacity.
const DefaultCapacity = 500

// Ring is a fixed-capacity buffer of log lines. Once full, each new line
// evicts the oldest. Safe for concurrent use.
type Ring struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
}

// New returns a ring holding up to capacity lines.
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{lines: make([]string, capacity)}
}

// Write records p as one or more log lines. It never fails; the contract is
// io.Writer's, but a log sink must not propagate errors back into the logger.
func (r *Ring) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		r.append(line)
	}
	return len(p), nil
}

func (r *Ring) append(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[r.next] = line
	r.next = (r.next + 1) % len(r.lines)
	if r.next == 0 {
		r.full = true
	}
}

// Recent returns a copy of the buffered lines, oldest first.
func (r *Ring) Recent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		out := make([]string, r.next)
		copy(out, r.lines[:r.next])
		return out
	}
	out := make([]string, 0, len(r.lines))
	out = append(out, r.lines[r.next:]...)
	out = append(out, r.lines[:r.next]...)
	return out
}

// Len reports how many lines are currently buffered.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return len(r.lines)
	}
	return r.next
}
