package middleware

import (
	"context"

	"anonwall/internal/identity"
	"anonwall/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// AnonIdentity resolves the anonymous identity for every request. An existing
// anon_id cookie is used as-is; otherwise a token is minted and set as a
// long-lived httpOnly cookie. The resolved id is stored in c.Locals("anonID").
// Only the cookie is trusted; identity asserted via headers is ignored.
func AnonIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, minted := identity.Resolve(c.Cookies(identity.CookieName))
		if minted {
			c.Cookie(&fiber.Cookie{
				Name:     identity.CookieName,
				Value:    id,
				MaxAge:   int(identity.CookieMaxAge.Seconds()),
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
			observability.IdentitiesMinted.Inc()
		}
		c.Locals("anonID", id)
		// ContextMiddleware runs before the identity is resolved, so the
		// context value is injected here.
		c.SetUserContext(context.WithValue(c.UserContext(), AnonIDKey, id))
		return c.Next()
	}
}

// AnonID returns the identity resolved by AnonIdentity for this request.
func AnonID(c *fiber.Ctx) string {
	if id, ok := c.Locals("anonID").(string); ok {
		return id
	}
	return ""
}
