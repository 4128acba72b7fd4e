package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// FileSecretStore keeps each secret in its own file under a 0700 directory,
// with 0600 file permissions. This is the filesystem analog of a platform
// keychain: confidentiality at rest is delegated to the OS, and values are
// opaque strings.
type FileSecretStore struct {
	baseDir string
}

// NewFileSecretStore creates a secret store rooted at baseDir.
// If baseDir is empty, uses ~/.sessionkit/secrets/
func NewFileSecretStore(baseDir string) (*FileSecretStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".sessionkit", "secrets")
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create secrets directory: %w", err)
	}

	log.Debug().Str("baseDir", baseDir).Msg("secret store initialized")

	return &FileSecretStore{baseDir: baseDir}, nil
}

// Get returns the value for key, or "" if the key has never been set.
func (s *FileSecretStore) Get(key string) (string, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read secret %q: %w", key, err)
	}
	return string(data), nil
}

// Set writes the value for key atomically (temp file + rename).
func (s *FileSecretStore) Set(key, value string) error {
	path := s.path(key)
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, []byte(value), 0600); err != nil {
		return fmt.Errorf("failed to write secret %q: %w", key, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save secret %q: %w", key, err)
	}

	return nil
}

// Delete removes the key. Deleting a missing key is not an error.
func (s *FileSecretStore) Delete(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete secret %q: %w", key, err)
	}
	return nil
}

func (s *FileSecretStore) path(key string) string {
	// Keys are fixed identifiers, but never let one escape the base dir.
	name := strings.ReplaceAll(key, string(os.PathSeparator), "_")
	return filepath.Join(s.baseDir, name+".secret")
}
