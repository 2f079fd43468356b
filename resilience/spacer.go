package resilience

import (
	"context"
	"sync"
	"time"
)

// SleepFunc blocks for d or until ctx ends.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the real SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SpacerConfig configures a Spacer.
type SpacerConfig struct {
	// Interval is the minimum gap between the completion of one call and
	// the start of the next.
	// Default: 1500 milliseconds
	Interval time.Duration

	// Now and Sleep replace the clock in tests.
	Now   func() time.Time
	Sleep SleepFunc
}

// Spacer enforces a minimum gap between calls, measured from completion.
// Unlike a token bucket it never lets a burst through.
type Spacer struct {
	interval time.Duration
	now      func() time.Time
	sleep    SleepFunc

	mu   sync.Mutex
	last time.Time
}

// NewSpacer creates a spacer. The first Wait returns immediately.
func NewSpacer(config SpacerConfig) *Spacer {
	if config.Interval <= 0 {
		config.Interval = 1500 * time.Millisecond
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Sleep == nil {
		config.Sleep = Sleep
	}
	return &Spacer{
		interval: config.Interval,
		now:      config.Now,
		sleep:    config.Sleep,
	}
}

// Remaining returns how long the next call must still wait.
func (s *Spacer) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last.IsZero() {
		return 0
	}
	if elapsed := s.now().Sub(s.last); elapsed < s.interval {
		return s.interval - elapsed
	}
	return 0
}

// Wait blocks until the interval since the last completion has passed.
func (s *Spacer) Wait(ctx context.Context) error {
	if d := s.Remaining(); d > 0 {
		return s.sleep(ctx, d)
	}
	return ctx.Err()
}

// Done records a call completion.
func (s *Spacer) Done() {
	s.mu.Lock()
	s.last = s.now()
	s.mu.Unlock()
}

// Interval returns the configured gap.
func (s *Spacer) Interval() time.Duration {
	return s.interval
}
