// Package schedule drives a router's periodic and triggered update
// broadcasts. It is a single-timer reduction of device/advert's two-timer
// ADVERT scheduler: this protocol has one broadcast kind, fired either on a
// fixed interval or immediately when the route table goes dirty.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// tickInterval is the resolution of the scheduler's timer check loop.
const tickInterval = 100 * time.Millisecond

// BroadcastFunc sends one Update broadcast.
type BroadcastFunc func()

// Config configures the Scheduler.
type Config struct {
	// UpdateInterval is the period between scheduled Update broadcasts.
	UpdateInterval time.Duration
	// Logger for scheduler events. Falls back to slog.Default() if nil.
	Logger *slog.Logger
}

// Scheduler fires BroadcastFunc on a fixed interval, and on demand via
// TriggerNow for the triggered-update path. A triggered broadcast resets the
// interval timer, matching original_source's router, which reschedules its
// update timer every time _broadcast runs regardless of why it ran.
type Scheduler struct {
	cfg       Config
	log       *slog.Logger
	broadcast BroadcastFunc

	mu       sync.Mutex
	nextFire time.Time
	cancel   context.CancelFunc

	// nowFn allows overriding time.Now() for testing.
	nowFn func() time.Time
}

// New creates a Scheduler that invokes broadcast on the configured interval.
func New(broadcast BroadcastFunc, cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cfg:       cfg,
		log:       logger.WithGroup("schedule"),
		broadcast: broadcast,
		nowFn:     time.Now,
	}
}

// Start begins the periodic check loop. It blocks until ctx is cancelled or
// Stop is called, so it is typically run in a goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.resetTimerLocked()
	s.mu.Unlock()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkTimer()
		}
	}
}

// Stop cancels the scheduler's loop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// TriggerNow fires an immediate broadcast and resets the interval timer, for
// use on the triggered-update path when the route table becomes dirty.
func (s *Scheduler) TriggerNow() {
	s.broadcast()
	s.log.Debug("sent triggered update")

	s.mu.Lock()
	s.resetTimerLocked()
	s.mu.Unlock()
}

func (s *Scheduler) checkTimer() {
	s.mu.Lock()
	now := s.nowFn()
	if s.nextFire.IsZero() || now.Before(s.nextFire) {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.broadcast()
	s.log.Debug("sent scheduled update")

	s.mu.Lock()
	s.resetTimerLocked()
	s.mu.Unlock()
}

// resetTimerLocked sets the next fire time. Must be called with s.mu held.
func (s *Scheduler) resetTimerLocked() {
	if s.cfg.UpdateInterval > 0 {
		s.nextFire = s.nowFn().Add(s.cfg.UpdateInterval)
	} else {
		s.nextFire = time.Time{}
	}
}
