package upstream

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// tokenExpiry resolves when tok stops being usable. The token response's
// expires_in wins; otherwise the exp claim of a JWT access token is used and
// finally the configured default lifetime.
func tokenExpiry(tok *oauth2.Token, now time.Time, fallback time.Duration) time.Time {
	if !tok.Expiry.IsZero() {
		return tok.Expiry
	}

	if exp, ok := jwtExpiry(tok.AccessToken); ok {
		return exp
	}

	return now.Add(fallback)
}

// jwtExpiry reads the exp claim without verifying the signature. The value is
// only used as a local estimate; the finance API remains the authority.
func jwtExpiry(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, false
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}

	return claims.ExpiresAt.Time, true
}
