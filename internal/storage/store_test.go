package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/config"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/shared/testutil"
)

func TestLocalStore_Store(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	root := t.TempDir()
	store := NewLocalStore(root, logger)

	err := store.Store(context.Background(), []byte("xlsx-bytes"), "WIP", "WIP.xlsx")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "WIP", "WIP.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, "xlsx-bytes", string(data))
	assert.Equal(t, BackendLocal, store.Backend())
}

func TestLocalStore_OverwritesExisting(t *testing.T) {
	store := NewLocalStore(t.TempDir(), nil)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, []byte("v1"), "WIP", "storico_dati.xlsx"))
	require.NoError(t, store.Store(ctx, []byte("v2"), "WIP", "storico_dati.xlsx"))

	data, err := os.ReadFile(filepath.Join(store.Root(), "WIP", "storico_dati.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestLocalStore_RejectsInvalidNames(t *testing.T) {
	store := NewLocalStore(t.TempDir(), nil)
	tests := []struct {
		folder, name string
	}{
		{"", "a.xlsx"},
		{"WIP", ""},
		{"..", "a.xlsx"},
		{"WIP", "../a.xlsx"},
		{"a/b", "a.xlsx"},
	}
	for _, tt := range tests {
		err := store.Store(context.Background(), []byte("x"), tt.folder, tt.name)
		assert.ErrorIs(t, err, ErrInvalidName, "folder=%q name=%q", tt.folder, tt.name)
	}
}

func TestLocalStore_CancelledContext(t *testing.T) {
	store := NewLocalStore(t.TempDir(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Store(ctx, []byte("x"), "WIP", "WIP.xlsx")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(store.Root(), "WIP", "WIP.xlsx"))
}

func TestNopStore(t *testing.T) {
	var s ArtifactStore = NopStore{}
	assert.NoError(t, s.Store(context.Background(), nil, "", ""))
	assert.Equal(t, BackendNone, s.Backend())
}

func TestNew(t *testing.T) {
	paths := config.NewPaths(config.PathsConfig{ExecutableDir: t.TempDir()})
	ctx := context.Background()

	local, err := New(ctx, config.StorageConfig{Backend: BackendLocal}, paths, nil)
	require.NoError(t, err)
	require.IsType(t, &LocalStore{}, local)
	assert.Equal(t, filepath.Join(paths.DataDir, "published"), local.(*LocalStore).Root())

	none, err := New(ctx, config.StorageConfig{Backend: BackendNone}, paths, nil)
	require.NoError(t, err)
	assert.Equal(t, BackendNone, none.Backend())

	_, err = New(ctx, config.StorageConfig{Backend: "ftp"}, paths, nil)
	assert.Error(t, err)

	_, err = New(ctx, config.StorageConfig{
		Backend:              BackendDrive,
		DriveCredentialsFile: filepath.Join(t.TempDir(), "missing.json"),
	}, paths, nil)
	assert.Error(t, err)
}
