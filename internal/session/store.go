package session

import (
	"sync"
	"time"
)

type entry struct {
	mu      sync.Mutex
	session Session
	evicted bool
}

// Store keeps one session per user. Each user has their own lock, so a
// slow event for one user never blocks another.
type Store struct {
	mu      sync.Mutex
	entries map[int64]*entry
	now     func() time.Time
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{
		entries: make(map[int64]*entry),
		now:     time.Now,
	}
}

// Do runs fn with exclusive access to the user's session, creating an
// idle session on first use. Calls for the same user are serialized.
func (s *Store) Do(userID int64, fn func(*Session)) {
	for {
		e := s.entry(userID)
		e.mu.Lock()
		if e.evicted {
			// Lost a race with EvictIdle; pick up the replacement entry
			e.mu.Unlock()
			continue
		}
		fn(&e.session)
		e.session.LastActive = s.now()
		e.mu.Unlock()
		return
	}
}

// Get returns a copy of the user's session and whether it exists
func (s *Store) Get(userID int64) (Session, bool) {
	s.mu.Lock()
	e, ok := s.entries[userID]
	s.mu.Unlock()
	if !ok {
		return Session{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.evicted {
		return Session{}, false
	}
	return e.session.Clone(), true
}

// Len returns the number of stored sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// EvictIdle removes sessions untouched for longer than ttl and returns
// how many were removed. Sessions that are locked or in the middle of a
// flow are kept.
func (s *Store) EvictIdle(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for userID, e := range s.entries {
		if !e.mu.TryLock() {
			continue
		}
		if !e.session.Busy() && e.session.LastActive.Before(cutoff) {
			e.evicted = true
			delete(s.entries, userID)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}

func (s *Store) entry(userID int64) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		e = &entry{session: New(userID)}
		e.session.LastActive = s.now()
		s.entries[userID] = e
	}
	return e
}
