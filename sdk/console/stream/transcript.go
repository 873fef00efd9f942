package stream

import (
	"log/slog"
	"strings"
	"sync"
)

// Transcript is the append-only event log for one streaming request, plus
// the derived in-progress answer text.
//
// It has exactly one writer (the handle's read loop) and arbitrarily many
// readers (render paths), so appends and snapshots are guarded by a RWMutex.
type Transcript struct {
	mu       sync.RWMutex
	events   []Event
	text     strings.Builder
	terminal Event
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append applies one event, maintaining the terminal-event invariant: once a
// Completion or StreamError has been appended, every further append is a
// logged no-op. Returns whether the event was accepted.
func (t *Transcript) Append(ev Event) bool {
	if ev == nil {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminal != nil {
		slog.Warn("dropping stream event after terminal event",
			"kind", ev.EventKind(), "terminal", t.terminal.EventKind())
		return false
	}

	t.events = append(t.events, ev)
	if tok, ok := ev.(Token); ok {
		t.text.WriteString(tok.Text)
	}
	if IsTerminal(ev) {
		t.terminal = ev
	}
	return true
}

// Events returns a snapshot copy of the ordered event list. Safe to call
// from a render path at any time, including mid-stream.
func (t *Transcript) Events() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Event(nil), t.events...)
}

// Len returns the number of appended events.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.events)
}

// CurrentText returns the concatenation of all Token text seen so far. The
// concatenation is maintained incrementally on append, not recomputed here.
func (t *Transcript) CurrentText() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.text.String()
}

// TerminalEvent returns the Completion or StreamError that ended the
// transcript, or nil while the stream is still open.
func (t *Transcript) TerminalEvent() Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.terminal
}
