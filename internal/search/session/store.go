package session

import (
	"context"
	"sync"
	"time"

	"palantir/internal/domain"
)

type entry struct {
	session    *domain.SearchSession
	cancel     context.CancelFunc
	resetTimer *time.Timer
}

// Store owns the active search session per caller. At most one search runs
// per session id; starting a new search cancels the previous one's context
// (last-writer-wins), so stale fetches stop promptly instead of running to
// completion against a discarded session.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string]*entry),
	}
}

// Begin registers a new session under id, cancelling and replacing any
// previous one.
func (s *Store) Begin(id string, sess *domain.SearchSession, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLocked(id)
	s.entries[id] = &entry{session: sess, cancel: cancel}
}

func (s *Store) Get(id string) (*domain.SearchSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	return e.session, true
}

// Clear cancels the session's in-flight work and forgets it.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLocked(id)
	delete(s.entries, id)
}

func (s *Store) dropLocked(id string) {
	if e, ok := s.entries[id]; ok {
		if e.resetTimer != nil {
			e.resetTimer.Stop()
		}
		e.cancel()
	}
}

// ScheduleProgressReset clears the session's progress display after the
// delay. Cosmetic only; cancelled when the session is cleared or replaced.
func (s *Store) ScheduleProgressReset(id string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return
	}
	if e.resetTimer != nil {
		e.resetTimer.Stop()
	}
	sess := e.session
	e.resetTimer = time.AfterFunc(delay, func() {
		sess.SetProgress("", 0, false)
	})
}
