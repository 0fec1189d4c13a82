package session_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/pharmadash/pharmadash/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "token")
	store := session.NewFileStore(path)

	// Missing file means no session, not an error.
	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save("tok-123"))

	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	// A fresh store instance reads the same file.
	again := session.NewFileStore(path)
	token, err = again.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	require.NoError(t, store.Clear())
	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	// Clearing twice is fine.
	require.NoError(t, store.Clear())
}

func TestFileStore_TokenSourceRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store := session.NewFileStore(path)

	assert.Empty(t, store.Token())

	require.NoError(t, store.Save("tok-xyz"))
	assert.Equal(t, "tok-xyz", store.Token())
}

func TestFileStore_OwnerOnlyPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}

	path := filepath.Join(t.TempDir(), "token")
	store := session.NewFileStore(path)
	require.NoError(t, store.Save("secret"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
