package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// FileCacheStore is a single JSON document held in memory and persisted
// atomically on every write. Reads never touch the filesystem after open,
// which keeps them cheap enough to sit on the hot path of every request.
type FileCacheStore struct {
	path string

	mu     sync.RWMutex
	values map[string]string
}

// NewFileCacheStore opens (or creates) the cache file at path.
// If path is empty, uses ~/.sessionkit/cache.json
func NewFileCacheStore(path string) (*FileCacheStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, ".sessionkit", "cache.json")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &FileCacheStore{path: path, values: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read cache: %w", err)
		}
	} else if err := json.Unmarshal(data, &c.values); err != nil {
		return nil, fmt.Errorf("failed to parse cache: %w", err)
	}

	if c.values == nil {
		c.values = make(map[string]string)
	}

	log.Debug().Str("path", path).Int("keys", len(c.values)).Msg("cache store initialized")

	return c, nil
}

// Get returns the value for key, or "" if the key has never been set.
func (c *FileCacheStore) Get(key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[key], nil
}

// Set writes the value for key and persists the cache file.
func (c *FileCacheStore) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[key] = value
	return c.persist()
}

// Delete removes the key and persists the cache file. Deleting a missing
// key is not an error.
func (c *FileCacheStore) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.values[key]; !ok {
		return nil
	}

	delete(c.values, key)
	return c.persist()
}

// persist writes the cache file atomically. Callers must hold the write lock.
func (c *FileCacheStore) persist() error {
	data, err := json.MarshalIndent(c.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	tempPath := c.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}

	if err := os.Rename(tempPath, c.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save cache: %w", err)
	}

	return nil
}
