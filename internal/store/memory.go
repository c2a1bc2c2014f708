package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
)

var (
	// ErrNotFound is returned when a session has never started a search.
	ErrNotFound = errors.New("no search for session")
)

// Status is the display state of a session's newest search.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Ticket identifies one search within a session. Only the ticket with the
// session's current generation may publish a result.
type Ticket struct {
	Session    string `json:"session"`
	Generation uint64 `json:"generation"`
}

// Entry is what a session currently displays.
type Entry struct {
	Session    string                   `json:"session"`
	Generation uint64                   `json:"generation"`
	City       string                   `json:"city"`
	Status     Status                   `json:"status"`
	Snapshot   *weather.WeatherSnapshot `json:"snapshot,omitempty"`
	Failure    error                    `json:"-"`
	StartedAt  time.Time                `json:"startedAt"`
	UpdatedAt  time.Time                `json:"updatedAt"`
}

// SessionStore is a concurrency-safe in-memory record of the newest search per
// session. It never serves results back to the pipeline.
type SessionStore struct {
	mu sync.RWMutex

	// key: session id
	data map[string]*Entry

	// sessions idle longer than maxAge are pruned (0 = never)
	maxAge time.Duration
	now    func() time.Time
}

// NewSessionStore creates a new SessionStore.
// If maxAge is <= 0, sessions are kept until the process exits.
func NewSessionStore(maxAge time.Duration) *SessionStore {
	return &SessionStore{
		data:   make(map[string]*Entry),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Begin starts a new search for the session and supersedes any search still
// in flight for it.
func (s *SessionStore) Begin(session, city string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	entry, ok := s.data[session]
	if !ok {
		entry = &Entry{Session: session}
		s.data[session] = entry
	}

	entry.Generation++
	entry.City = city
	entry.Status = StatusPending
	entry.Snapshot = nil
	entry.Failure = nil
	entry.StartedAt = now
	entry.UpdatedAt = now

	return Ticket{Session: session, Generation: entry.Generation}
}

// Complete publishes the outcome of ticket's search. It returns false and
// drops the result when a newer search has begun since.
func (s *SessionStore) Complete(ticket Ticket, snapshot weather.WeatherSnapshot, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.data[ticket.Session]
	if !ok || entry.Generation != ticket.Generation {
		return false
	}

	entry.UpdatedAt = s.now().UTC()
	if err != nil {
		entry.Status = StatusFailed
		entry.Failure = err
		entry.Snapshot = nil
		return true
	}

	snap := snapshot
	entry.Status = StatusDone
	entry.Snapshot = &snap
	entry.Failure = nil
	return true
}

// IsCurrent reports whether ticket is still the session's newest search.
func (s *SessionStore) IsCurrent(ticket Ticket) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[ticket.Session]
	return ok && entry.Generation == ticket.Generation
}

// Get returns a copy of the session's entry.
func (s *SessionStore) Get(session string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[session]
	if !ok {
		return Entry{}, ErrNotFound
	}

	out := *entry
	if entry.Snapshot != nil {
		snap := *entry.Snapshot
		out.Snapshot = &snap
	}
	return out, nil
}

// Prune drops sessions whose last update is older than maxAge. Sessions with
// a search still pending are kept. It returns the number removed.
func (s *SessionStore) Prune() int {
	if s.maxAge <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().UTC().Add(-s.maxAge)
	removed := 0
	for key, entry := range s.data {
		if entry.Status == StatusPending {
			continue
		}
		if entry.UpdatedAt.Before(cutoff) {
			delete(s.data, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
