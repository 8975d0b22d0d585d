package quota

import (
	"context"
	"testing"
	"time"
)

// fakeClock drives the limiter without real sleeping: sleeps advance the
// clock instantly and are recorded.
type fakeClock struct {
	current time.Time
	slept   []time.Duration
}

func (c *fakeClock) now() time.Time { return c.current }

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.slept = append(c.slept, d)
	c.current = c.current.Add(d)
	return nil
}

func newTestLimiter(calls int, window time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{current: time.Unix(1_700_000_000, 0)}
	l := NewLimiter("test", calls, window)
	l.now = clock.now
	l.sleep = clock.sleep
	return l, clock
}

func TestAcquireWithinBudgetDoesNotBlock(t *testing.T) {
	l, clock := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if err := l.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire %d: %v", i, err)
		}
	}
	if len(clock.slept) != 0 {
		t.Fatalf("expected no sleeping within budget, slept %v", clock.slept)
	}
}

func TestAcquireBlocksUntilWindowBoundary(t *testing.T) {
	l, clock := newTestLimiter(3, time.Minute)
	start := clock.current

	for i := 0; i < 3; i++ {
		if err := l.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire %d: %v", i, err)
		}
	}

	// Fourth call must wait until the window boundary, never be rejected.
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire over budget: %v", err)
	}
	if len(clock.slept) == 0 {
		t.Fatalf("expected over-budget acquire to sleep")
	}
	if clock.current.Before(start.Add(time.Minute)) {
		t.Fatalf("acquire completed before window boundary: now=%v start=%v", clock.current, start)
	}
}

func TestWindowResetsAfterElapsing(t *testing.T) {
	l, clock := newTestLimiter(1, time.Minute)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	clock.current = clock.current.Add(2 * time.Minute)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire in fresh window: %v", err)
	}
	if len(clock.slept) != 0 {
		t.Fatalf("fresh window should not block, slept %v", clock.slept)
	}
}

func TestAcquireHonorsCancelledContext(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	l.sleep = sleepContext // real sleep so cancellation is what unblocks

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Acquire(ctx); err == nil {
		t.Fatalf("expected context error from cancelled acquire")
	}
}
