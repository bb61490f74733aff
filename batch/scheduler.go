/*
scheduler.go - Background trigger for the batch jobs

DESIGN:
  - One goroutine, one ticker
  - Every tick runs the accrual batch as of today
  - When a prior calendar year exists that has not been closed, the
    year-close batch runs for it first; CloseYear is idempotent, so
    re-checking every tick is harmless
*/
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hrworks/leave-engine/calendar"
)

// Scheduler periodically triggers the batch runner.
type Scheduler struct {
	Runner   *Runner
	Interval time.Duration
	Log      zerolog.Logger

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewScheduler(runner *Runner, interval time.Duration, log zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		Runner:   runner,
		Interval: interval,
		Log:      log,
		stop:     make(chan struct{}),
	}
}

// Start begins the scheduler. Safe to call once.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticker = time.NewTicker(s.Interval)
	s.wg.Add(1)
	go s.run()

	s.Log.Info().Dur("interval", s.Interval).Msg("scheduler started")
}

// Stop halts the scheduler and waits for an in-flight run to finish.
// Safe to call more than once, and before Start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	s.ticker = nil
	close(s.stop)
	s.wg.Wait()
	s.Log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.tick()

	for {
		select {
		case <-s.ticker.C:
			s.tick()
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) tick() {
	ctx := context.Background()
	today := calendar.Today()

	// Close the previous year first so carry-forward lands before any
	// new-year accrual reads the opening balance.
	if _, err := s.Runner.RunYearClose(ctx, today.Year()-1); err != nil {
		s.Log.Error().Err(err).Int("year", today.Year()-1).Msg("year-close batch failed")
	}

	if _, err := s.Runner.RunAccrualBatch(ctx, today); err != nil {
		s.Log.Error().Err(err).Str("as_of", today.String()).Msg("accrual batch failed")
	}
}

// RunNow triggers an immediate tick (for admin endpoints and tests).
func (s *Scheduler) RunNow() {
	s.tick()
}
