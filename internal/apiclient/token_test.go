package apiclient

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return token
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()

	t.Run("far future exp is not expired", func(t *testing.T) {
		assert.False(t, tokenExpired(signedToken(t, now.Add(time.Hour)), now))
	})

	t.Run("past exp is expired", func(t *testing.T) {
		assert.True(t, tokenExpired(signedToken(t, now.Add(-time.Hour)), now))
	})

	t.Run("exp within the buffer counts as expired", func(t *testing.T) {
		assert.True(t, tokenExpired(signedToken(t, now.Add(30*time.Second)), now))
	})

	t.Run("exp just past the buffer is not expired", func(t *testing.T) {
		assert.False(t, tokenExpired(signedToken(t, now.Add(90*time.Second)), now))
	})

	t.Run("unparsable token fails safe as expired", func(t *testing.T) {
		assert.True(t, tokenExpired("not-a-jwt", now))
	})

	t.Run("missing exp claim fails safe as expired", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject: "user-1",
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		assert.True(t, tokenExpired(token, now))
	})
}
