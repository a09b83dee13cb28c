// Package ratelimit implements sliding-window rate limiting keyed by
// (action, scope, client). Limiters are injected instances rather than
// process-wide state so tests and servers can own independent windows.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// MinRetryAfter is the floor applied to the retry hint returned to clients.
const MinRetryAfter = time.Second

// Result is the outcome of a limiter check.
type Result struct {
	Limited    bool
	RetryAfter time.Duration
}

// Limiter admits or rejects one action attempt. A hit is recorded only when
// the attempt is admitted, so a rejected action never consumes budget.
type Limiter interface {
	Hit(ctx context.Context, action, scope, clientID string, window time.Duration, max int) (Result, error)
}

// Policy bundles the window parameters for one action type.
type Policy struct {
	Action string
	Window time.Duration
	Max    int
}

func key(action, scope, clientID string) string {
	return fmt.Sprintf("%s:%s:%s", action, scope, clientID)
}
