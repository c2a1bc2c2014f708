package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/i474232898/weather-lookup/internal/store"
)

// watchNamespace scopes the deterministic session ids of watched cities.
var watchNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("weather-lookup/watch"))

// Submitter is satisfied by *search.Searcher.
type Submitter interface {
	Submit(session, city string) store.Ticket
}

// Scheduler periodically refreshes watched cities and prunes idle sessions.
type Scheduler struct {
	scheduler *gocron.Scheduler
	searcher  Submitter
	sessions  *store.SessionStore
	cities    []string
	interval  time.Duration
}

// New creates a new Scheduler.
func New(cities []string, interval time.Duration, searcher Submitter, sessions *store.SessionStore) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		searcher:  searcher,
		sessions:  sessions,
		cities:    cities,
		interval:  interval,
	}
}

// WatchSession returns the stable session id under which a watched city's
// latest weather is published.
func WatchSession(city string) string {
	return uuid.NewSHA1(watchNamespace, []byte(common.Normalize(city))).String()
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.cities) == 0 {
		log.Println("scheduler: no watch cities configured; only pruning sessions")
	}

	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	_, err := s.scheduler.Every(interval).SingletonMode().Do(s.refresh)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// refresh submits every watched city and prunes idle sessions. Submissions
// are asynchronous; the searcher publishes results as they arrive.
func (s *Scheduler) refresh() {
	log.Println("scheduler: running refresh job")

	for _, city := range s.cities {
		ticket := s.searcher.Submit(WatchSession(city), city)
		log.Printf("DEBUG: scheduler: submitted %q as session %s (generation %d)", city, ticket.Session, ticket.Generation)
	}

	if s.sessions != nil {
		if n := s.sessions.Prune(); n > 0 {
			log.Printf("scheduler: pruned %d idle sessions", n)
		}
	}
	log.Println("scheduler: completed refresh job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
