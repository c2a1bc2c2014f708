// Package search runs pipeline lookups off the caller's goroutine with a
// latest-wins policy per session.
package search

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// Runner is satisfied by *weather.Pipeline.
type Runner interface {
	Run(ctx context.Context, city string) (weather.WeatherSnapshot, error)
}

// Searcher dispatches one pipeline run per Submit. A newer Submit for the same
// session cancels the older run's context (it stops at its next step
// boundary) and the store discards whatever the older run produces.
type Searcher struct {
	runner  Runner
	store   *store.SessionStore
	timeout time.Duration

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new Searcher. timeout bounds each run; 0 means no deadline.
func New(runner Runner, sessions *store.SessionStore, timeout time.Duration) *Searcher {
	return &Searcher{
		runner:  runner,
		store:   sessions,
		timeout: timeout,
		cancels: make(map[string]context.CancelFunc),
	}
}

// Submit starts a search and returns immediately.
func (s *Searcher) Submit(session, city string) store.Ticket {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), s.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	s.mu.Lock()
	if prev, ok := s.cancels[session]; ok {
		prev()
	}
	s.cancels[session] = cancel
	ticket := s.store.Begin(session, city)
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.release(ticket, cancel)

		snapshot, err := s.runner.Run(ctx, city)
		if !s.store.Complete(ticket, snapshot, err) {
			log.Printf("DEBUG: search: discarding stale result for session %s (generation %d)", ticket.Session, ticket.Generation)
			return
		}
		if err != nil {
			log.Printf("search: %q failed for session %s: %v", city, ticket.Session, err)
		}
	}()

	return ticket
}

// release cancels the run's context and forgets it unless a newer run has
// already replaced it.
func (s *Searcher) release(ticket store.Ticket, cancel context.CancelFunc) {
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store.IsCurrent(ticket) {
		delete(s.cancels, ticket.Session)
	}
}

// Wait blocks until every submitted run has finished.
func (s *Searcher) Wait() {
	s.wg.Wait()
}
