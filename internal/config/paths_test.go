package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	base := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere", "users.json")

	paths := NewPaths(PathsConfig{ExecutableDir: base, UsersFile: abs})

	assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
	assert.Equal(t, filepath.Join(base, "data", "reports"), paths.ReportsDir)
	assert.Equal(t, filepath.Join(base, "data", "uploads"), paths.UploadsDir)
	assert.Equal(t, filepath.Join(base, "logs"), paths.LogsDir)
	assert.Equal(t, abs, paths.UsersFile)

	assert.Equal(t, filepath.Join(paths.ReportsDir, "WIP.xlsx"), paths.GetReportPath("WIP.xlsx"))
	assert.Equal(t, filepath.Join(paths.ReportsDir, "b1"), paths.GetBatchDir("b1"))
	assert.Equal(t, filepath.Join(paths.UploadsDir, "x.txt"), paths.GetUploadPath("x.txt"))
	assert.Equal(t, filepath.Join(paths.LogsDir, "app.log"), paths.GetLogPath("app.log"))
}

func TestEnsureDirectories(t *testing.T) {
	paths := NewPaths(PathsConfig{ExecutableDir: t.TempDir()})
	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.DataDir, paths.ReportsDir, paths.UploadsDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestGetPaths(t *testing.T) {
	paths, err := GetPaths()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(paths.ExecutableDir))
	assert.Equal(t, filepath.Join(paths.ExecutableDir, "data"), paths.DataDir)
}

func TestFileExists(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f")
	assert.False(t, FileExists(file))
	require.NoError(t, os.WriteFile(file, nil, 0644))
	assert.True(t, FileExists(file))
}
