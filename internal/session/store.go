// Package session holds the process-wide view of "who is logged in": the
// token pair, the user's profile, their organization memberships, and the
// active organization. State is split across two durable stores (tokens in
// the secret store, everything else in the fast cache) and mirrored in
// memory behind a single lock.
package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/sessionkit/internal/store"
)

// Secret store keys (confidential).
const (
	accessTokenKey  = "auth-access-token"
	refreshTokenKey = "auth-refresh-token"
)

// Cache store keys (non-sensitive, JSON where structured).
const (
	userKey        = "auth-user"
	membershipsKey = "auth-memberships"
	activeOrgKey   = "auth-active-organization"
)

// Store is the single authoritative session state. Construct one per
// process with New, call Hydrate before anything else, and share it by
// reference.
type Store struct {
	secrets store.SecretStore
	cache   store.CacheStore

	mu            sync.RWMutex
	accessToken   string
	refreshToken  string
	user          *User
	memberships   []Membership
	activeOrgID   string
	hydrated      bool
	authenticated bool
}

// New creates an empty, unhydrated session store over the two adapters.
func New(secrets store.SecretStore, cache store.CacheStore) *Store {
	return &Store{secrets: secrets, cache: cache}
}

// Hydrate reconstructs the session from durable storage. It must complete
// before any authenticated request is made. If the tokens are gone but
// stale profile data survives from a prior run, the stale data is cleared
// so no caller ever observes a half-populated, unauthenticated session.
// Hydrate always finishes with IsHydrated() == true.
func (s *Store) Hydrate() error {
	accessToken, err := s.secrets.Get(accessTokenKey)
	if err != nil {
		return fmt.Errorf("failed to read access token: %w", err)
	}
	refreshToken, err := s.secrets.Get(refreshTokenKey)
	if err != nil {
		return fmt.Errorf("failed to read refresh token: %w", err)
	}

	user, memberships, activeOrgID, err := s.readCache()
	if err != nil {
		return err
	}

	authenticated := accessToken != "" && refreshToken != "" && user != nil

	if !authenticated {
		// Tokens are gone; drop whatever partial profile data was found.
		if err := s.clearCache(); err != nil {
			return err
		}

		s.mu.Lock()
		s.accessToken = ""
		s.refreshToken = ""
		s.user = nil
		s.memberships = nil
		s.activeOrgID = ""
		s.authenticated = false
		s.hydrated = true
		s.mu.Unlock()

		log.Debug().Msg("session hydrated unauthenticated")
		return nil
	}

	s.mu.Lock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	s.user = user
	s.memberships = memberships
	s.activeOrgID = activeOrgID
	s.authenticated = true
	s.hydrated = true
	s.mu.Unlock()

	log.Debug().
		Str("userID", user.ID).
		Int("memberships", len(memberships)).
		Msg("session hydrated")

	return nil
}

// SetAuth persists a freshly authenticated session: tokens to the secret
// store, profile data to the cache, then memory. Called after any
// login/register/2FA flow completes. activeOrgID may be "" when the user
// has no organization yet.
func (s *Store) SetAuth(accessToken, refreshToken string, user *User, memberships []Membership, activeOrgID string) error {
	if err := s.secrets.Set(accessTokenKey, accessToken); err != nil {
		return err
	}
	if err := s.secrets.Set(refreshTokenKey, refreshToken); err != nil {
		return err
	}

	if err := s.writeCacheJSON(userKey, user); err != nil {
		return err
	}
	if err := s.writeCacheJSON(membershipsKey, memberships); err != nil {
		return err
	}
	if activeOrgID == "" {
		if err := s.cache.Delete(activeOrgKey); err != nil {
			return err
		}
	} else if err := s.cache.Set(activeOrgKey, activeOrgID); err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	s.user = user
	s.memberships = memberships
	s.activeOrgID = activeOrgID
	s.authenticated = true
	s.mu.Unlock()

	log.Info().Str("userID", user.ID).Msg("session established")

	return nil
}

// SetTokens rotates the token pair after a refresh. Both fields are
// persisted and then swapped in memory under one lock acquisition, so a
// reader can never observe a new access token alongside an old refresh
// token. Does not touch the authenticated flag; only the refresh
// coordinator calls this, and only for an already-authenticated session.
func (s *Store) SetTokens(accessToken, refreshToken string) error {
	if err := s.secrets.Set(accessTokenKey, accessToken); err != nil {
		return err
	}
	if err := s.secrets.Set(refreshTokenKey, refreshToken); err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	s.mu.Unlock()

	log.Debug().Msg("token pair rotated")

	return nil
}

// SetUser updates the cached profile.
func (s *Store) SetUser(user *User) error {
	if err := s.writeCacheJSON(userKey, user); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	return nil
}

// SetMemberships replaces the cached membership list.
func (s *Store) SetMemberships(memberships []Membership) error {
	if err := s.writeCacheJSON(membershipsKey, memberships); err != nil {
		return err
	}

	s.mu.Lock()
	s.memberships = memberships
	s.mu.Unlock()

	return nil
}

// SetActiveOrganization switches the tenant context. Passing "" clears it,
// deleting the cache key rather than writing an empty value.
func (s *Store) SetActiveOrganization(orgID string) error {
	if orgID == "" {
		if err := s.cache.Delete(activeOrgKey); err != nil {
			return err
		}
	} else if err := s.cache.Set(activeOrgKey, orgID); err != nil {
		return err
	}

	s.mu.Lock()
	s.activeOrgID = orgID
	s.mu.Unlock()

	log.Debug().Str("orgID", orgID).Msg("active organization changed")

	return nil
}

// Logout erases both stores and resets the in-memory session to the
// unauthenticated-but-hydrated state. Safe to call whether or not a
// session exists.
func (s *Store) Logout() error {
	if err := s.secrets.Delete(accessTokenKey); err != nil {
		return err
	}
	if err := s.secrets.Delete(refreshTokenKey); err != nil {
		return err
	}

	if err := s.clearCache(); err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.user = nil
	s.memberships = nil
	s.activeOrgID = ""
	s.authenticated = false
	s.mu.Unlock()

	log.Info().Msg("session cleared")

	return nil
}

// AccessToken returns the current access token, or "" when signed out.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token, or "" when signed out.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Tokens returns the access/refresh pair as written together.
func (s *Store) Tokens() (accessToken, refreshToken string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken, s.refreshToken
}

// User returns the signed-in user, or nil.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Memberships returns a copy of the membership list.
func (s *Store) Memberships() []Membership {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Membership, len(s.memberships))
	copy(out, s.memberships)
	return out
}

// ActiveOrganizationID returns the active tenant, or "" when none is set.
func (s *Store) ActiveOrganizationID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeOrgID
}

// IsAuthenticated reports whether a complete session (both tokens plus a
// user) is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// IsHydrated reports whether Hydrate has completed. It transitions once,
// false to true, and never reverts.
func (s *Store) IsHydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

func (s *Store) readCache() (*User, []Membership, string, error) {
	var user *User
	raw, err := s.cache.Get(userKey)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to read cached user: %w", err)
	}
	if raw != "" {
		user = &User{}
		if err := json.Unmarshal([]byte(raw), user); err != nil {
			// Corrupt cache entry; treat as absent and let hydration reset.
			log.Warn().Err(err).Msg("discarding unreadable cached user")
			user = nil
		}
	}

	var memberships []Membership
	raw, err = s.cache.Get(membershipsKey)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to read cached memberships: %w", err)
	}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &memberships); err != nil {
			log.Warn().Err(err).Msg("discarding unreadable cached memberships")
			memberships = nil
		}
	}

	activeOrgID, err := s.cache.Get(activeOrgKey)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to read cached active organization: %w", err)
	}

	return user, memberships, activeOrgID, nil
}

func (s *Store) clearCache() error {
	for _, key := range []string{userKey, membershipsKey, activeOrgKey} {
		if err := s.cache.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeCacheJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return s.cache.Set(key, string(data))
}
