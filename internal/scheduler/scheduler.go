package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	evictor   Evictor
	ttl       time.Duration
	interval  time.Duration
	log       *slog.Logger
}

// Evictor interface for dropping idle sessions
type Evictor interface {
	EvictIdle(ttl time.Duration) int
}

// New creates a new scheduler instance. A non-positive ttl disables
// eviction.
func New(evictor Evictor, ttl, interval time.Duration, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		evictor:   evictor,
		ttl:       ttl,
		interval:  interval,
		log:       log,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	if s.ttl <= 0 {
		s.log.Info("session eviction disabled")
		return nil
	}

	if _, err := s.scheduler.Every(s.interval).Do(s.evictIdleSessions); err != nil {
		return fmt.Errorf("failed to schedule session eviction: %w", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// RunNow performs one eviction pass immediately
func (s *Scheduler) RunNow() int {
	return s.evictIdleSessions()
}

// evictIdleSessions removes sessions idle for longer than the ttl
func (s *Scheduler) evictIdleSessions() int {
	removed := s.evictor.EvictIdle(s.ttl)
	if removed > 0 {
		s.log.Info("evicted idle sessions", slog.Int("count", removed), slog.Duration("ttl", s.ttl))
	}
	return removed
}
