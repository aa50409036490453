package guard

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateLimiter is a fixed-window counter keyed by (identifier, window bucket).
// The bucket is floor(now/window), so a source's budget resets on wall-clock
// boundaries rather than sliding. Entries for past buckets are swept
// periodically.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*rateEntry

	window time.Duration
	max    int

	now func() time.Time
}

type rateEntry struct {
	count   int
	resetAt int64
}

type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetAt   int64 // epoch milliseconds, end of the current window

	nowMs int64 // clock reading taken during Allow
}

// RetryAfterSec reports the whole seconds until the window resets, rounded
// up, never below 1. It is computed against the limiter's own clock reading
// so the value matches ResetAt.
func (r RateLimitResult) RetryAfterSec() int64 {
	remaining := r.ResetAt - r.nowMs
	if remaining <= 0 {
		return 1
	}
	return (remaining + 999) / 1000
}

func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	return &RateLimiter{
		entries: make(map[string]*rateEntry),
		window:  window,
		max:     max,
		now:     time.Now,
	}
}

// SetClock overrides the time source. Tests use this to control windowing.
func (l *RateLimiter) SetClock(now func() time.Time) {
	l.now = now
}

// Allow increments the counter for identifier's current window bucket and
// reports whether the request is within budget.
func (l *RateLimiter) Allow(identifier string) RateLimitResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	nowMs := l.now().UnixMilli()
	windowMs := l.window.Milliseconds()
	bucket := nowMs / windowMs
	key := fmt.Sprintf("%s:%d", identifier, bucket)

	entry, ok := l.entries[key]
	if !ok {
		entry = &rateEntry{resetAt: (bucket + 1) * windowMs}
		l.entries[key] = entry
	}

	entry.count++

	if entry.count > l.max {
		return RateLimitResult{Allowed: false, Remaining: 0, ResetAt: entry.resetAt, nowMs: nowMs}
	}

	return RateLimitResult{
		Allowed:   true,
		Remaining: l.max - entry.count,
		ResetAt:   entry.resetAt,
		nowMs:     nowMs,
	}
}

// Sweep drops entries whose window has already ended.
func (l *RateLimiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	nowMs := l.now().UnixMilli()
	for key, entry := range l.entries {
		if entry.resetAt < nowMs {
			delete(l.entries, key)
		}
	}
}

// StartSweeping runs Sweep on the given interval until ctx is cancelled.
func (l *RateLimiter) StartSweeping(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Sweep()
			}
		}
	}()
}
