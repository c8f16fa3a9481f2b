package llm

import (
	"errors"
	"testing"
	"time"
)

// fakeClock is an adjustable time source for limiter tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func TestFixedWindowLimiterAdmitsUpToMax(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	limiter := NewFixedWindowLimiter(60, time.Minute).WithClock(clock.now)

	for i := 0; i < 60; i++ {
		if err := limiter.Allow(); err != nil {
			t.Fatalf("call %d should be admitted: %v", i+1, err)
		}
	}

	err := limiter.Allow()
	if err == nil {
		t.Fatal("61st call should be rejected")
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("rejection should match ErrRateLimited, got %v", err)
	}
}

func TestFixedWindowLimiterRenewsAfterWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	limiter := NewFixedWindowLimiter(2, time.Minute).WithClock(clock.now)

	limiter.Allow()
	limiter.Allow()
	if err := limiter.Allow(); err == nil {
		t.Fatal("expected rejection at capacity")
	}

	// Still inside the window: rejected.
	clock.advance(30 * time.Second)
	if err := limiter.Allow(); err == nil {
		t.Fatal("expected rejection mid-window")
	}

	// Window elapsed: admitted again.
	clock.advance(30 * time.Second)
	if err := limiter.Allow(); err != nil {
		t.Fatalf("expected admission after window renewal: %v", err)
	}
}

func TestFixedWindowLimiterRejectionReportsWait(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	limiter := NewFixedWindowLimiter(1, time.Minute).WithClock(clock.now)

	limiter.Allow()
	clock.advance(15 * time.Second)

	err := limiter.Allow()
	var rle *RateLimitedError
	if !errors.As(err, &rle) {
		t.Fatalf("expected RateLimitedError, got %v", err)
	}
	if rle.RetryAfter != 45*time.Second {
		t.Errorf("expected 45s wait, got %s", rle.RetryAfter)
	}
}

func TestFixedWindowLimiterRejectionsDoNotExtendWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	limiter := NewFixedWindowLimiter(1, time.Minute).WithClock(clock.now)

	limiter.Allow()
	for i := 0; i < 5; i++ {
		clock.advance(10 * time.Second)
		limiter.Allow()
	}
	// 50s of rejections later the original window still ends on schedule.
	clock.advance(10 * time.Second)
	if err := limiter.Allow(); err != nil {
		t.Fatalf("expected admission once the original window elapsed: %v", err)
	}
}

func TestFixedWindowLimiterZeroCapacityAdmitsNothing(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	limiter := NewFixedWindowLimiter(0, time.Minute).WithClock(clock.now)

	for i := 0; i < 3; i++ {
		err := limiter.Allow()
		if err == nil {
			t.Fatal("zero-capacity limiter must reject every call")
		}
		if !errors.Is(err, ErrRateLimited) {
			t.Errorf("rejection should match ErrRateLimited, got %v", err)
		}
		clock.advance(time.Minute)
	}
	if limiter.Remaining() != 0 {
		t.Errorf("zero-capacity limiter reports no remaining calls, got %d", limiter.Remaining())
	}
}

func TestFixedWindowLimiterRemaining(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	limiter := NewFixedWindowLimiter(3, time.Minute).WithClock(clock.now)

	if limiter.Remaining() != 3 {
		t.Errorf("fresh limiter should have full capacity, got %d", limiter.Remaining())
	}
	limiter.Allow()
	limiter.Allow()
	if limiter.Remaining() != 1 {
		t.Errorf("expected 1 remaining, got %d", limiter.Remaining())
	}
	limiter.Allow()
	if limiter.Remaining() != 0 {
		t.Errorf("expected 0 remaining, got %d", limiter.Remaining())
	}

	clock.advance(time.Minute)
	if limiter.Remaining() != 3 {
		t.Errorf("expected full capacity after renewal, got %d", limiter.Remaining())
	}
}
