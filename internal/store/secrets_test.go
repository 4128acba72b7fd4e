package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileSecretStore(t *testing.T) {
	t.Run("creates directory with correct permissions", func(t *testing.T) {
		tmpDir := t.TempDir()
		secretsDir := filepath.Join(tmpDir, "secrets")

		s, err := NewFileSecretStore(secretsDir)
		require.NoError(t, err)
		assert.NotNil(t, s)

		info, err := os.Stat(secretsDir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
	})
}

func TestFileSecretStore_GetSetDelete(t *testing.T) {
	t.Run("missing key reads as empty", func(t *testing.T) {
		s, err := NewFileSecretStore(t.TempDir())
		require.NoError(t, err)

		value, err := s.Get("auth-access-token")
		require.NoError(t, err)
		assert.Empty(t, value)
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		s, err := NewFileSecretStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, s.Set("auth-access-token", "at1"))

		value, err := s.Get("auth-access-token")
		require.NoError(t, err)
		assert.Equal(t, "at1", value)
	})

	t.Run("secret files are 0600", func(t *testing.T) {
		tmpDir := t.TempDir()
		s, err := NewFileSecretStore(tmpDir)
		require.NoError(t, err)

		require.NoError(t, s.Set("auth-refresh-token", "rt1"))

		info, err := os.Stat(filepath.Join(tmpDir, "auth-refresh-token.secret"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("overwrite replaces the value", func(t *testing.T) {
		s, err := NewFileSecretStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, s.Set("auth-access-token", "at1"))
		require.NoError(t, s.Set("auth-access-token", "at2"))

		value, err := s.Get("auth-access-token")
		require.NoError(t, err)
		assert.Equal(t, "at2", value)
	})

	t.Run("delete removes the key", func(t *testing.T) {
		s, err := NewFileSecretStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, s.Set("auth-access-token", "at1"))
		require.NoError(t, s.Delete("auth-access-token"))

		value, err := s.Get("auth-access-token")
		require.NoError(t, err)
		assert.Empty(t, value)
	})

	t.Run("delete of missing key is not an error", func(t *testing.T) {
		s, err := NewFileSecretStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, s.Delete("never-set"))
	})

	t.Run("values survive reopen", func(t *testing.T) {
		tmpDir := t.TempDir()

		s, err := NewFileSecretStore(tmpDir)
		require.NoError(t, err)
		require.NoError(t, s.Set("auth-access-token", "at1"))

		reopened, err := NewFileSecretStore(tmpDir)
		require.NoError(t, err)

		value, err := reopened.Get("auth-access-token")
		require.NoError(t, err)
		assert.Equal(t, "at1", value)
	})
}
