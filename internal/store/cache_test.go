package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCacheStore(t *testing.T) {
	t.Run("missing key reads as empty", func(t *testing.T) {
		c, err := NewFileCacheStore(filepath.Join(t.TempDir(), "cache.json"))
		require.NoError(t, err)

		value, err := c.Get("auth-user")
		require.NoError(t, err)
		assert.Empty(t, value)
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		c, err := NewFileCacheStore(filepath.Join(t.TempDir(), "cache.json"))
		require.NoError(t, err)

		require.NoError(t, c.Set("auth-active-organization", "org-1"))

		value, err := c.Get("auth-active-organization")
		require.NoError(t, err)
		assert.Equal(t, "org-1", value)
	})

	t.Run("delete removes the key", func(t *testing.T) {
		c, err := NewFileCacheStore(filepath.Join(t.TempDir(), "cache.json"))
		require.NoError(t, err)

		require.NoError(t, c.Set("auth-active-organization", "org-1"))
		require.NoError(t, c.Delete("auth-active-organization"))

		value, err := c.Get("auth-active-organization")
		require.NoError(t, err)
		assert.Empty(t, value)
	})

	t.Run("delete of missing key is not an error", func(t *testing.T) {
		c, err := NewFileCacheStore(filepath.Join(t.TempDir(), "cache.json"))
		require.NoError(t, err)

		require.NoError(t, c.Delete("never-set"))
	})

	t.Run("values survive reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.json")

		c, err := NewFileCacheStore(path)
		require.NoError(t, err)
		require.NoError(t, c.Set("auth-user", `{"id":"user-1"}`))
		require.NoError(t, c.Set("auth-active-organization", "org-1"))

		reopened, err := NewFileCacheStore(path)
		require.NoError(t, err)

		value, err := reopened.Get("auth-user")
		require.NoError(t, err)
		assert.Equal(t, `{"id":"user-1"}`, value)

		value, err = reopened.Get("auth-active-organization")
		require.NoError(t, err)
		assert.Equal(t, "org-1", value)
	})

	t.Run("creates parent directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "cache.json")

		c, err := NewFileCacheStore(path)
		require.NoError(t, err)
		require.NoError(t, c.Set("k", "v"))
	})
}
