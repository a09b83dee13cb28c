// Package identity establishes the stable anonymous identity behind every
// client. The identity is an opaque random token carried in a long-lived
// httpOnly cookie; it is the sole basis for ownership and like attribution.
package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CookieName is the cookie carrying the anonymous identity token.
const CookieName = "anon_id"

// CookieMaxAge is the lifetime of the identity cookie.
const CookieMaxAge = 365 * 24 * time.Hour

// Resolve returns the identity for a client given the value of its identity
// cookie. An empty value mints a fresh 128-bit random token; minted reports
// whether the caller must issue a Set-Cookie for it. Identity values asserted
// anywhere other than the cookie are never honored.
func Resolve(cookieValue string) (id string, minted bool) {
	if cookieValue != "" {
		return cookieValue, false
	}
	return NewToken(), true
}

// NewToken mints a new opaque identity token: a random UUID rendered compact.
func NewToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
