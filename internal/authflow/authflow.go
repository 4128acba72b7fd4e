// Package authflow bridges the backend's auth endpoints and the session
// store: it logs in, completes the post-auth bootstrap (memberships +
// initial active organization), and keeps memberships current. The actual
// credential checking, 2FA verification, and token issuance all live
// server-side; this package only transports and persists what the backend
// returns.
package authflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/sessionkit/internal/apiclient"
	"github.com/wolfeidau/sessionkit/internal/session"
)

// ErrInvalidTokens is returned by CompleteAuth when the freshly issued
// tokens are rejected by the backend.
var ErrInvalidTokens = errors.New("authentication tokens are invalid")

// AuthResponse is the token+user payload every successful auth flow
// (login, register, 2FA verify) resolves to.
type AuthResponse struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	ExpiresIn    int           `json:"expiresIn"`
	User         *session.User `json:"user"`
}

// TwoFactorChallenge is returned by login when the account requires a
// second factor before tokens are issued.
type TwoFactorChallenge struct {
	ChallengeToken string   `json:"challengeToken"`
	Methods        []string `json:"methods"`
	ExpiresAt      string   `json:"expiresAt"`
}

// LoginResult holds exactly one of Auth or Challenge.
type LoginResult struct {
	Auth      *AuthResponse
	Challenge *TwoFactorChallenge
}

type meResponse struct {
	session.User
	Memberships []session.Membership `json:"memberships"`
}

// Login posts credentials and returns either tokens or a 2FA challenge.
// A non-2xx response yields an error carrying the backend's localized
// message.
func Login(ctx context.Context, client *apiclient.Client, email, password string) (*LoginResult, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	resp, err := client.PublicFetch(ctx, http.MethodPost, "/auth/login", body, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New(apiclient.ErrorMessage(resp, "Login failed"))
	}

	// The login endpoint returns one of two shapes; the discriminator is
	// the requiresTwoFactor flag.
	var raw struct {
		RequiresTwoFactor bool `json:"requiresTwoFactor"`
		AuthResponse
		TwoFactorChallenge
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}

	if raw.RequiresTwoFactor {
		challenge := raw.TwoFactorChallenge
		return &LoginResult{Challenge: &challenge}, nil
	}

	auth := raw.AuthResponse
	return &LoginResult{Auth: &auth}, nil
}

// CompleteAuth finishes any successful auth flow: it fetches /auth/me for
// the membership list, picks the initial active organization (the user's
// default org when still a member, else the first membership), and persists
// the whole session.
//
// A network failure on /auth/me degrades to an empty membership list
// (memberships can be fetched later), but a 401 means the tokens themselves
// are bad, which is fatal.
func CompleteAuth(ctx context.Context, client *apiclient.Client, sess *session.Store, auth *AuthResponse) error {
	var memberships []session.Membership
	activeOrgID := ""

	// The session is not established yet, so this goes through the public
	// pipeline with an explicit bearer header.
	header := http.Header{}
	header.Set("Authorization", "Bearer "+auth.AccessToken)

	resp, err := client.PublicFetch(ctx, http.MethodGet, "/auth/me", nil, header)
	if err != nil {
		log.Warn().Err(err).Msg("profile fetch failed, continuing without memberships")
	} else {
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return ErrInvalidTokens
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			var me meResponse
			if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
				log.Warn().Err(err).Msg("failed to decode profile, continuing without memberships")
			} else {
				memberships = me.Memberships
				activeOrgID = pickActiveOrg(auth.User.DefaultOrgID, memberships)
			}
		}
	}

	return sess.SetAuth(auth.AccessToken, auth.RefreshToken, auth.User, memberships, activeOrgID)
}

// RefreshMemberships re-fetches /auth/me through the authenticated pipeline
// and updates the cached membership list. Failures are non-critical; the
// list refreshes on the next call. When no active organization is set and
// memberships exist, the first one becomes active.
func RefreshMemberships(ctx context.Context, client *apiclient.Client, sess *session.Store) error {
	resp, err := client.Fetch(ctx, http.MethodGet, "/auth/me", nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil
	}

	var me meResponse
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return fmt.Errorf("failed to decode profile: %w", err)
	}

	if err := sess.SetMemberships(me.Memberships); err != nil {
		return err
	}

	if sess.ActiveOrganizationID() == "" && len(me.Memberships) > 0 {
		return sess.SetActiveOrganization(me.Memberships[0].OrganizationID)
	}

	return nil
}

func pickActiveOrg(defaultOrgID string, memberships []session.Membership) string {
	if defaultOrgID != "" {
		for _, m := range memberships {
			if m.OrganizationID == defaultOrgID {
				return defaultOrgID
			}
		}
	}
	if len(memberships) > 0 {
		return memberships[0].OrganizationID
	}
	return ""
}
