package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// refreshKey is the single-flight key; there is only ever one token pair to
// refresh, so every caller shares one flight.
const refreshKey = "refresh"

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// refreshTokens exchanges the refresh token for a new pair, rotating the
// session's tokens on success. At most one refresh call is in flight
// system-wide: concurrent callers join the in-flight exchange and receive
// its outcome. Failure is reported via the boolean, never an error, so
// every waiter gets the same clean answer, and the flight is forgotten once
// settled so the next expiry starts a fresh attempt.
//
// staleToken is the access token the caller found expired or rejected. A
// caller that arrives just after a flight settled double-checks against it:
// if the session already carries a different token, the pair was rotated by
// that flight and no second network call is needed.
func (c *Client) refreshTokens(ctx context.Context, staleToken string) bool {
	v, _, shared := c.refreshGroup.Do(refreshKey, func() (any, error) {
		if current := c.session.AccessToken(); current != "" && current != staleToken {
			return true, nil
		}
		return c.doRefresh(ctx), nil
	})

	ok, _ := v.(bool)

	if shared {
		log.Debug().Bool("ok", ok).Msg("joined in-flight token refresh")
	}

	return ok
}

func (c *Client) doRefresh(ctx context.Context) bool {
	refreshToken := c.session.RefreshToken()
	if refreshToken == "" {
		return false
	}

	// The flight is shared by every concurrent request, so it must not die
	// with whichever caller happened to start it, and it must not hang all
	// waiters on a dead server either.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
	defer cancel()

	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(rctx, http.MethodPost, c.baseURL+"/auth/refresh", bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", c.Locale())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("token refresh request failed")
		return false
	}
	defer closeQuietly(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Msg("token refresh rejected")
		return false
	}

	var tokens refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		log.Warn().Err(err).Msg("failed to decode refresh response")
		return false
	}

	if err := c.session.SetTokens(tokens.AccessToken, tokens.RefreshToken); err != nil {
		log.Warn().Err(err).Msg("failed to persist rotated tokens")
		return false
	}

	log.Debug().Msg("token refresh complete")

	return true
}
