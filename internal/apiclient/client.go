// Package apiclient is the only way the rest of the application reaches the
// backend. Fetch wraps authenticated endpoints with proactive and reactive
// token refresh; PublicFetch serves the endpoints that precede
// authentication. All refreshes funnel through a single-flight coordinator
// so concurrent requests never race to rotate the token pair.
package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/wolfeidau/sessionkit/internal/session"
)

// Sentinel errors. Each of these forces a logout before it is returned, so
// callers can uniformly route any of them to the sign-in flow.
var (
	// ErrNoAccessToken is returned when an authenticated call is attempted
	// with no session.
	ErrNoAccessToken = errors.New("no access token")

	// ErrTokenRefreshFailed is returned when a proactive refresh fails;
	// the refresh token itself is no longer good.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// ErrAuthenticationFailed is returned when a 401-triggered refresh
	// fails.
	ErrAuthenticationFailed = errors.New("authentication failed")
)

const defaultRefreshTimeout = 30 * time.Second

// Config configures a Client.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.example.com/api/v1".
	BaseURL string

	// Locale is the initial Accept-Language value. Defaults to "en".
	Locale string

	// HTTPClient overrides the transport. Defaults to http.DefaultClient.
	// See NewCachingHTTPClient for a client that caches public GETs.
	HTTPClient *http.Client

	// RefreshTimeout bounds the refresh network call so a hung server
	// cannot block every waiting request forever. Defaults to 30s.
	RefreshTimeout time.Duration
}

// Client is the request pipeline over one session store. The session must
// be hydrated before Fetch is called.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	session        *session.Store
	refreshTimeout time.Duration

	localeMu sync.RWMutex
	locale   string

	refreshGroup singleflight.Group
}

// New creates a client bound to the given session store.
func New(cfg Config, sess *session.Store) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	locale := cfg.Locale
	if locale == "" {
		locale = "en"
	}

	refreshTimeout := cfg.RefreshTimeout
	if refreshTimeout <= 0 {
		refreshTimeout = defaultRefreshTimeout
	}

	return &Client{
		baseURL:        cfg.BaseURL,
		httpClient:     httpClient,
		session:        sess,
		refreshTimeout: refreshTimeout,
		locale:         locale,
	}, nil
}

// SetLocale changes the Accept-Language value sent on subsequent requests.
func (c *Client) SetLocale(locale string) {
	c.localeMu.Lock()
	c.locale = locale
	c.localeMu.Unlock()
}

// Locale returns the current Accept-Language value.
func (c *Client) Locale() string {
	c.localeMu.RLock()
	defer c.localeMu.RUnlock()
	return c.locale
}

// Fetch sends an authenticated request. The body is given as a byte slice
// (not a reader) because the reactive 401 path may resend it once. Caller
// headers override the defaults on key collision.
//
// The access token is refreshed proactively when it expires within 60
// seconds, and reactively on a 401, with exactly one retry; a 401 on the
// retry is returned to the caller as-is. Any refresh failure clears the
// session and returns one of the sentinel errors above.
func (c *Client) Fetch(ctx context.Context, method, path string, body []byte, header http.Header) (*http.Response, error) {
	accessToken := c.session.AccessToken()
	if accessToken == "" {
		if err := c.session.Logout(); err != nil {
			return nil, err
		}
		return nil, ErrNoAccessToken
	}

	// Proactive refresh before the token dies in transit.
	if tokenExpired(accessToken, time.Now()) {
		if !c.refreshTokens(ctx, accessToken) {
			if err := c.session.Logout(); err != nil {
				return nil, err
			}
			return nil, ErrTokenRefreshFailed
		}
		accessToken = c.session.AccessToken()
	}

	resp, err := c.send(ctx, method, path, body, accessToken, header)
	if err != nil {
		return nil, err
	}

	// Reactive path: the server invalidated the token out from under us.
	if resp.StatusCode == http.StatusUnauthorized {
		closeQuietly(resp)

		if !c.refreshTokens(ctx, accessToken) {
			if err := c.session.Logout(); err != nil {
				return nil, err
			}
			return nil, ErrAuthenticationFailed
		}

		// Retry once with the rotated token. A second 401 is the caller's
		// problem; retrying again risks a refresh loop.
		return c.send(ctx, method, path, body, c.session.AccessToken(), header)
	}

	return resp, nil
}

// PublicFetch sends an unauthenticated request, for the endpoints that
// precede sign-in (login, register, password reset, invitation validation).
// Shares the locale and header-merge semantics with Fetch; no Authorization
// or tenant headers, no refresh logic.
func (c *Client) PublicFetch(ctx context.Context, method, path string, body []byte, header http.Header) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	mergeHeader(req.Header, header)

	return c.httpClient.Do(req)
}

// send builds and executes one authenticated request.
func (c *Client) send(ctx context.Context, method, path string, body []byte, accessToken string, header http.Header) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	// Tenant header rides along only when an organization is active.
	if orgID := c.session.ActiveOrganizationID(); orgID != "" {
		req.Header.Set("x-organization-id", orgID)
	}

	mergeHeader(req.Header, header)

	return c.httpClient.Do(req)
}

// newRequest builds a request with the headers shared by both pipelines.
func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", c.Locale())

	return req, nil
}

// mergeHeader layers the caller's headers over the defaults; the caller
// wins on key collision.
func mergeHeader(dst, src http.Header) {
	for key, values := range src {
		dst.Del(key)
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}

func closeQuietly(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		log.Debug().Err(err).Msg("failed to close response body")
	}
}
