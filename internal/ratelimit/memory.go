package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps per-key hit timestamps in process memory. State is
// never persisted and resets on restart.
type MemoryLimiter struct {
	mu   sync.Mutex
	hits map[string][]time.Time
	now  func() time.Time
}

// NewMemoryLimiter returns an empty in-memory limiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		hits: make(map[string][]time.Time),
		now:  time.Now,
	}
}

// Hit checks and records one attempt for (action, scope, clientID).
func (l *MemoryLimiter) Hit(_ context.Context, action, scope, clientID string, window time.Duration, max int) (Result, error) {
	now := l.now()
	k := key(action, scope, clientID)

	l.mu.Lock()
	defer l.mu.Unlock()

	valid := l.hits[k][:0:0]
	for _, ts := range l.hits[k] {
		if now.Sub(ts) < window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= max {
		retry := window - now.Sub(valid[0])
		if retry < MinRetryAfter {
			retry = MinRetryAfter
		}
		l.hits[k] = valid
		return Result{Limited: true, RetryAfter: retry}, nil
	}

	l.hits[k] = append(valid, now)
	return Result{}, nil
}
