// Package quota implements blocking fixed-window rate limiters for the
// Twitter API call budgets. Each named operation (following lookup, user
// lookup, post) gets its own Limiter; a call past the window budget blocks
// until the window boundary instead of failing.
package quota

import (
	"context"
	"sync"
	"time"
)

// Twitter API v2 default budgets per 15-minute window.
const (
	DefaultWindow               = 15 * time.Minute
	DefaultFollowingLookupCalls = 15
	DefaultUserLookupCalls      = 300
	DefaultPostCalls            = 75
)

// Limiter enforces at most `calls` acquisitions per fixed window.
type Limiter struct {
	name   string
	calls  int
	window time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	mu          sync.Mutex
	windowStart time.Time
	used        int
}

// NewLimiter builds a limiter for a named operation. Non-positive calls or
// window fall back to the Twitter defaults.
func NewLimiter(name string, calls int, window time.Duration) *Limiter {
	if calls <= 0 {
		calls = DefaultUserLookupCalls
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		name:   name,
		calls:  calls,
		window: window,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

// Name returns the operation name the limiter guards.
func (l *Limiter) Name() string { return l.name }

// Acquire blocks until the caller may perform one call under the window
// budget. It returns early only when the context is cancelled.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		wait, ok := l.tryAcquire()
		if ok {
			return nil
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// tryAcquire takes one slot if the current window has budget left. When the
// budget is spent it returns the time remaining until the window resets.
func (l *Limiter) tryAcquire() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.windowStart.IsZero() || now.Sub(l.windowStart) >= l.window {
		l.windowStart = now
		l.used = 0
	}
	if l.used < l.calls {
		l.used++
		return 0, true
	}
	return l.windowStart.Add(l.window).Sub(now), false
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
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
