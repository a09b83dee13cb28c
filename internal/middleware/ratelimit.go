package middleware

import (
	"log/slog"

	"anonwall/internal/models"
	"anonwall/internal/observability"
	"anonwall/internal/ratelimit"

	"github.com/gofiber/fiber/v2"
)

// FailPolicy defines the behavior when the rate limit backend is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if the limiter errors.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if the limiter errors.
	FailClosed
)

// ScopeFunc derives the limiter scope from the request, e.g. the post id for
// per-post like limits. A nil ScopeFunc means a single shared scope.
type ScopeFunc func(*fiber.Ctx) string

// RateLimit returns a Fiber middleware enforcing the given policy with the
// default FailOpen behavior. The client key combines remote IP and anonymous
// identity so neither alone can be rotated to dodge the window.
func RateLimit(limiter ratelimit.Limiter, policy ratelimit.Policy, scope ScopeFunc) fiber.Handler {
	return RateLimitWithPolicy(limiter, policy, scope, FailOpen)
}

// RateLimitWithPolicy returns a Fiber middleware enforcing the given policy
// with a specific failure policy.
func RateLimitWithPolicy(limiter ratelimit.Limiter, policy ratelimit.Policy, scope ScopeFunc, failPolicy FailPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scopeVal := ""
		if scope != nil {
			scopeVal = scope(c)
		}
		clientID := c.IP() + ":" + AnonID(c)

		res, err := limiter.Hit(c.UserContext(), policy.Action, scopeVal, clientID, policy.Window, policy.Max)
		if err != nil {
			if failPolicy == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit fail-closed",
					slog.String("action", policy.Action), slog.String("error", err.Error()))
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
				})
			}
			Logger.WarnContext(c.UserContext(), "rate limit fail-open",
				slog.String("action", policy.Action), slog.String("error", err.Error()))
			return c.Next()
		}

		if res.Limited {
			observability.RateLimited.WithLabelValues(policy.Action).Inc()
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				models.NewRateLimitError(policy.Action, res.RetryAfter.Milliseconds()))
		}
		return c.Next()
	}
}
