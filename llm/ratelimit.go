// Fixed-window rate limiting for model endpoints.
//
// Information Hiding:
// - Window bookkeeping hidden behind Allow
// - Clock injectable for deterministic tests

package llm

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrRateLimited is the sentinel for calls rejected by a rate limiter.
// Use errors.Is to detect it; the concrete error carries the wait time.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitedError reports a rejected call and how long until the window
// renews. It matches ErrRateLimited under errors.Is.
type RateLimitedError struct {
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter.Round(time.Millisecond))
}

// Is matches the ErrRateLimited sentinel.
func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// FixedWindowLimiter admits at most max calls per window. The window
// starts at the first admitted call and renews only once it has fully
// elapsed; rejected calls do not consume capacity or extend the window.
// Whether and when to retry after a rejection is the caller's decision.
type FixedWindowLimiter struct {
	mu          sync.Mutex
	window      time.Duration
	max         uint32
	count       uint32
	windowStart time.Time
	now         func() time.Time
}

// NewFixedWindowLimiter creates a limiter admitting max calls per window.
func NewFixedWindowLimiter(max uint32, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		window: window,
		max:    max,
		now:    time.Now,
	}
}

// WithClock overrides the time source. For tests.
func (l *FixedWindowLimiter) WithClock(now func() time.Time) *FixedWindowLimiter {
	l.now = now
	return l
}

// Allow admits or rejects one call. On rejection the returned error
// matches ErrRateLimited and reports the remaining wait.
func (l *FixedWindowLimiter) Allow() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	// A zero-capacity limiter admits nothing; without this the first-call
	// branch below would admit one call per window.
	if l.max == 0 {
		return &RateLimitedError{RetryAfter: l.window}
	}

	if l.count == 0 || now.Sub(l.windowStart) >= l.window {
		l.windowStart = now
		l.count = 1
		return nil
	}

	if l.count < l.max {
		l.count++
		return nil
	}

	return &RateLimitedError{RetryAfter: l.window - now.Sub(l.windowStart)}
}

// Remaining reports how many calls the current window still admits.
func (l *FixedWindowLimiter) Remaining() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count == 0 || l.now().Sub(l.windowStart) >= l.window {
		return l.max
	}
	if l.count >= l.max {
		return 0
	}
	return l.max - l.count
}
