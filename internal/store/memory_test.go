package store

import (
	"errors"
	"testing"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
)

func TestSessionStoreLatestWins(t *testing.T) {
	s := NewSessionStore(time.Hour)

	first := s.Begin("sess", "Paris")
	second := s.Begin("sess", "London")

	if first.Generation >= second.Generation {
		t.Fatalf("generations not increasing: %d then %d", first.Generation, second.Generation)
	}
	if s.IsCurrent(first) || !s.IsCurrent(second) {
		t.Fatal("only the newest ticket should be current")
	}

	if !s.Complete(second, weather.WeatherSnapshot{City: "London"}, nil) {
		t.Fatal("current ticket was rejected")
	}
	// The slow, earlier search finishes last and must not overwrite the display.
	if s.Complete(first, weather.WeatherSnapshot{City: "Paris"}, nil) {
		t.Fatal("stale ticket was accepted")
	}

	entry, err := s.Get("sess")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry.Status != StatusDone || entry.Snapshot == nil || entry.Snapshot.City != "London" || entry.City != "London" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestSessionStoreFailure(t *testing.T) {
	s := NewSessionStore(0)
	ticket := s.Begin("sess", "Zzqqxx")

	failure := &weather.PipelineFailure{Kind: weather.FailureLocation, Err: weather.ErrNotFound}
	if !s.Complete(ticket, weather.WeatherSnapshot{}, failure) {
		t.Fatal("current ticket was rejected")
	}

	entry, _ := s.Get("sess")
	if entry.Status != StatusFailed || entry.Snapshot != nil {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if !errors.Is(entry.Failure, weather.ErrNotFound) {
		t.Fatalf("failure lost: %v", entry.Failure)
	}
}

func TestSessionStoreGetReturnsCopy(t *testing.T) {
	s := NewSessionStore(0)
	ticket := s.Begin("sess", "London")
	s.Complete(ticket, weather.WeatherSnapshot{City: "London", Condition: "Clouds"}, nil)

	entry, _ := s.Get("sess")
	entry.Snapshot.Condition = "mutated"

	again, _ := s.Get("sess")
	if again.Snapshot.Condition != "Clouds" {
		t.Fatal("Get exposed internal state")
	}
}

func TestSessionStoreUnknownSession(t *testing.T) {
	s := NewSessionStore(0)
	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if s.Complete(Ticket{Session: "missing", Generation: 1}, weather.WeatherSnapshot{}, nil) {
		t.Fatal("unknown session accepted a result")
	}
}

func TestSessionStorePrune(t *testing.T) {
	s := NewSessionStore(time.Hour)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	old := s.Begin("old", "Paris")
	s.Complete(old, weather.WeatherSnapshot{City: "Paris"}, nil)
	s.Begin("pending", "Oslo")

	now = now.Add(2 * time.Hour)
	fresh := s.Begin("fresh", "London")
	s.Complete(fresh, weather.WeatherSnapshot{City: "London"}, nil)

	if removed := s.Prune(); removed != 1 {
		t.Fatalf("expected 1 pruned session, got %d", removed)
	}
	if _, err := s.Get("old"); !errors.Is(err, ErrNotFound) {
		t.Fatal("old session survived pruning")
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 sessions left, got %d", s.Len())
	}
}
