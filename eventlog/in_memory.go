// Package eventlog houses implementations of the core.EventLog, the
// engine-level append-only record of phase boundaries and board mutations.
// The log is shared across sessions and independent of any session's board;
// entries are only ever appended, never rewritten.
package eventlog

import (
	"sync"

	"github.com/cognovo/differential/core"
)

// InMemoryLog is a volatile EventLog backed by a process local slice. Safe
// for concurrent use; reads return copies so callers cannot mutate history.
type InMemoryLog struct {
	mu     sync.RWMutex
	events []core.Event
}

// NewInMemoryLog constructs an empty in-memory event log.
func NewInMemoryLog() *InMemoryLog {
	return &InMemoryLog{}
}

// Append adds an event to the log. Only the orchestrator path appends.
func (l *InMemoryLog) Append(ev core.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

// BySession returns all events for a session id in append order.
func (l *InMemoryLog) BySession(sessionID string) []core.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var res []core.Event
	for _, ev := range l.events {
		if ev.SessionID == sessionID {
			res = append(res, ev)
		}
	}
	return res
}

// All returns up to limit most recent events in append order. A limit <= 0
// returns everything.
func (l *InMemoryLog) All(limit int) []core.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	start := 0
	if limit > 0 && limit < len(l.events) {
		start = len(l.events) - limit
	}
	res := make([]core.Event, len(l.events)-start)
	copy(res, l.events[start:])
	return res
}
