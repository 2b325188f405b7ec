package session

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosshub/client/internal/state"
)

func TestFileStorePlain(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "token")
	store := NewFileStore(path, "")

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, state.ErrNoToken)

	require.NoError(t, store.Save(ctx, "tok-plain", time.Now().Add(time.Hour)))
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-plain", got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, state.ErrNoToken)
}

func TestFileStoreEncrypted(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "token")
	store := NewFileStore(path, "correct horse")

	require.NoError(t, store.Save(ctx, "tok-secret", time.Time{}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), "tok-secret"))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-secret", got)

	_, err = NewFileStore(path, "wrong").Load(ctx)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestFileStoreDropsExpiredToken(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "token"), "")
	require.NoError(t, store.Save(ctx, "old", time.Now().Add(-time.Minute)))

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, state.ErrNoToken)
}

func TestFileStoreTruncatedCiphertext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("short"), 0o600))

	_, err := NewFileStore(path, "key").Load(context.Background())
	assert.ErrorIs(t, err, ErrDecrypt)
}
