// ABOUTME: Unverified JWT claim inspection for stored access tokens
// ABOUTME: Used for display and near-expiry hints, never for authorization

package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry extracts the exp claim from an access token without
// verifying the signature; the client holds no signing key and the
// server revalidates every request anyway.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}

	return exp.Time, true
}

// TokenExpiresWithin reports whether the token expires inside the
// given window. Unparseable tokens report false; the refresh path is
// the authority on whether they still work.
func TokenExpiresWithin(token string, window time.Duration) bool {
	exp, ok := TokenExpiry(token)
	if !ok {
		return false
	}
	return time.Until(exp) <= window
}
