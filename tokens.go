package mpinauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired reports whether a persisted bearer token is already known
// to be dead. The portal backend issues JWTs, so an unverified parse of the
// exp claim lets the decision engine route straight to login without a
// round-trip. Opaque or malformed tokens are treated as live; the server
// stays authoritative and will reject them itself.
func tokenExpired(token string, now time.Time) bool {
	if token == "" {
		return true
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.Time.After(now)
}
