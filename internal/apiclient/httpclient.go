package apiclient

import (
	"net/http"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
)

// NewCachingHTTPClient creates an HTTP client that honors Cache-Control
// headers on GET responses. Useful for the public pipeline's read-mostly
// endpoints (e.g. invitation validation) where the backend marks responses
// cacheable. Pass the result via Config.HTTPClient.
func NewCachingHTTPClient(cacheDir string) *http.Client {
	if cacheDir == "" {
		return &http.Client{
			Transport: httpcache.NewTransport(httpcache.NewMemoryCache()),
		}
	}

	// Disk-backed so cached responses survive restarts.
	return &http.Client{
		Transport: httpcache.NewTransport(diskcache.New(cacheDir)),
	}
}
