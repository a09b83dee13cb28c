package middleware

import (
	"regexp"
	"strings"

	"anonwall/internal/models"

	"github.com/gofiber/fiber/v2"
)

// localOriginPattern matches localhost and loopback origins on any port.
var localOriginPattern = regexp.MustCompile(`^(?i)https?://(localhost|127\.0\.0\.1)(:\d+)?$`)

// defaultOrigins are always allowed alongside any configured origins.
var defaultOrigins = []string{"http://localhost:5500", "http://127.0.0.1:5500"}

// OriginPolicy decides which browser origins may call the API.
type OriginPolicy struct {
	allowAll bool
	exact    map[string]struct{}
}

// NewOriginPolicy parses a CORS_ORIGINS value: "*" allows every origin,
// otherwise the comma-separated entries extend the built-in defaults.
func NewOriginPolicy(configured string) *OriginPolicy {
	configured = strings.TrimSpace(configured)
	if configured == "*" {
		return &OriginPolicy{allowAll: true}
	}

	exact := make(map[string]struct{})
	for _, o := range defaultOrigins {
		exact[o] = struct{}{}
	}
	for _, o := range strings.Split(configured, ",") {
		if o = strings.TrimSpace(o); o != "" {
			exact[o] = struct{}{}
		}
	}
	return &OriginPolicy{exact: exact}
}

// Allows reports whether the Origin header value may access the API.
// Requests without an Origin (curl, server-to-server) and local file previews
// (Origin "null") are always allowed.
func (p *OriginPolicy) Allows(origin string) bool {
	switch {
	case origin == "" || origin == "null":
		return true
	case p.allowAll:
		return true
	case localOriginPattern.MatchString(origin):
		return true
	default:
		_, ok := p.exact[origin]
		return ok
	}
}

// CORS enforces the origin policy and answers preflight requests. Denied
// origins receive 403 before any other middleware can run side effects.
func CORS(policy *OriginPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		if !policy.Allows(origin) {
			return models.RespondWithError(c, fiber.StatusForbidden, models.NewOriginDeniedError())
		}

		if origin != "" {
			c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
			c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
			c.Set(fiber.HeaderVary, fiber.HeaderOrigin)
		}

		if c.Method() == fiber.MethodOptions {
			c.Set(fiber.HeaderAccessControlAllowMethods, "GET, POST, DELETE, OPTIONS")
			c.Set(fiber.HeaderAccessControlAllowHeaders, "Origin, Content-Type, Accept")
			c.Set(fiber.HeaderAccessControlMaxAge, "86400")
			return c.SendStatus(fiber.StatusNoContent)
		}

		return c.Next()
	}
}
