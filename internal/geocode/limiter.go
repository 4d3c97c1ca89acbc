package geocode

import (
	"context"
	"sync"
	"time"
)

// RateLimiter serializes external geocoding calls process-wide: a
// mutex-guarded last-call timestamp enforcing a minimum interval between
// calls. Concurrent ingestion tasks contend on one limiter instance owned
// by the resolver; this is an intentional bottleneck to respect the
// third-party API's rate limit, not a correctness mechanism. Callers in
// other processes are not coordinated.
type RateLimiter struct {
	mu          sync.Mutex
	lastCall    time.Time
	minInterval time.Duration
}

// NewRateLimiter creates a limiter allowing at most rps requests per second.
// Non-positive rps disables limiting.
func NewRateLimiter(rps float64) *RateLimiter {
	var interval time.Duration
	if rps > 0 {
		interval = time.Duration(float64(time.Second) / rps)
	}
	return &RateLimiter{minInterval: interval}
}

// Wait blocks until the minimum interval since the previous call has
// passed, then records this call. The mutex is held through the sleep so
// concurrent callers queue in turn. Returns the context error if cancelled
// while waiting.
func (l *RateLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.minInterval > 0 && !l.lastCall.IsZero() {
		remaining := l.minInterval - time.Since(l.lastCall)
		if remaining > 0 {
			timer := time.NewTimer(remaining)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	l.lastCall = time.Now()
	return nil
}
