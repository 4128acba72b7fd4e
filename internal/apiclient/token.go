package apiclient

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiryBuffer is how far ahead of the exp claim a token is treated as
// expired, so a request never leaves with a token that dies in transit.
const expiryBuffer = 60 * time.Second

// tokenExpired reports whether the access token expires within the buffer.
// The payload is decoded without signature verification; this client holds
// no keys and the server re-validates everything. An unparsable token or a
// missing exp claim counts as expired, which fails safe into a refresh.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Before(now.Add(expiryBuffer))
}
