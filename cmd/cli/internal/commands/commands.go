package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wolfeidau/sessionkit/internal/apiclient"
	"github.com/wolfeidau/sessionkit/internal/session"
	"github.com/wolfeidau/sessionkit/internal/store"
)

type Globals struct {
	Debug   bool
	Version string
}

// clientFlags are the connection flags shared by every command.
type clientFlags struct {
	APIURL   string `help:"API base URL" env:"SESSIONKIT_API_URL" default:"http://localhost:3000/api/v1"`
	StateDir string `help:"Directory for session state" env:"SESSIONKIT_STATE_DIR"`
	Locale   string `help:"Accept-Language value for API requests" default:"en"`
}

// env wires the stores, the hydrated session, and the API client for one
// command invocation. Hydration runs here, before any command logic, so no
// authenticated call can ever precede it.
type env struct {
	secrets *store.FileSecretStore
	sess    *session.Store
	client  *apiclient.Client
}

func newEnv(flags clientFlags) (*env, error) {
	stateDir := flags.StateDir
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		stateDir = filepath.Join(home, ".sessionkit")
	}

	secrets, err := store.NewFileSecretStore(filepath.Join(stateDir, "secrets"))
	if err != nil {
		return nil, err
	}

	cache, err := store.NewFileCacheStore(filepath.Join(stateDir, "cache.json"))
	if err != nil {
		return nil, err
	}

	sess := session.New(secrets, cache)
	if err := sess.Hydrate(); err != nil {
		return nil, fmt.Errorf("failed to hydrate session: %w", err)
	}

	client, err := apiclient.New(apiclient.Config{
		BaseURL:    flags.APIURL,
		Locale:     flags.Locale,
		HTTPClient: apiclient.NewCachingHTTPClient(filepath.Join(stateDir, "http-cache")),
	}, sess)
	if err != nil {
		return nil, err
	}

	return &env{secrets: secrets, sess: sess, client: client}, nil
}
