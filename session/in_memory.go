// Package session houses concrete implementations of the core.SessionStore.
// The interface itself (and the Session struct) live in the core package to
// centralize domain contracts. Keeping only implementations here prevents
// higher level packages (engine, api) from depending on concrete storage.
package session

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cognovo/differential/core"
)

// InMemoryStore is a volatile SessionStore keeping sessions in a process
// local map. It is safe for concurrent access and suited for single-process
// deployments; session persistence to a datastore is explicitly out of
// scope for the engine. Sessions are stored as live pointers since each
// session performs its own locking and boards are exclusively owned by
// their session.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
	order    []string // insertion order, newest-last
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*core.Session)}
}

// Put registers a session under its id.
func (s *InMemoryStore) Put(sess *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[sess.ID]; !exists {
		s.order = append(s.order, sess.ID)
	}
	s.sessions[sess.ID] = sess
	return nil
}

// Get returns the session for an id.
func (s *InMemoryStore) Get(id string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, core.ErrSessionNotFound)
	}
	return sess, nil
}

// List returns sessions newest first, optionally filtered by status. A
// limit <= 0 returns all matches.
func (s *InMemoryStore) List(status core.SessionStatus, limit int) []*core.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*core.Session, 0, len(s.order))
	for _, id := range s.order {
		sess := s.sessions[id]
		if status != "" && sess.Status() != status {
			continue
		}
		res = append(res, sess)
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Created.After(res[j].Created) })
	if limit > 0 && limit < len(res) {
		res = res[:limit]
	}
	return res
}

// Stats returns session counts grouped by status plus a total.
func (s *InMemoryStore) Stats() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := map[string]int{"total": len(s.order)}
	for _, sess := range s.sessions {
		stats[string(sess.Status())]++
	}
	return stats
}
