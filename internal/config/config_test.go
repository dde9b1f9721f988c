package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_DefaultsOnly(t *testing.T) {
	t.Setenv("WIP_PATHS_EXECUTABLE_DIR", t.TempDir())

	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DefaultExpectedExports, cfg.Workflow.ExpectedExports)
	assert.Equal(t, DefaultHistoryRowCeiling, cfg.Workflow.HistoryRowCeiling)
	assert.Equal(t, "area", cfg.Workflow.HistoryMode)
	assert.Equal(t, "unmapped", cfg.Workflow.UnmappedArea)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFile_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server:
  port: 9000
  read_timeout: 5s
workflow:
  history_mode: flat
  expected_exports: 4
  unmapped_area: N/D
storage:
  remote_folder: Archivio
`), 0644))

	t.Setenv("WIP_PATHS_EXECUTABLE_DIR", dir)
	t.Setenv("WIP_SERVER_PORT", "9100")
	t.Setenv("WIP_WORKFLOW_HISTORY_ROW_CEILING", "0")

	cfg, err := LoadFile(file)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port, "env wins over file")
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "flat", cfg.Workflow.HistoryMode)
	assert.Equal(t, 4, cfg.Workflow.ExpectedExports)
	assert.Equal(t, "N/D", cfg.Workflow.UnmappedArea)
	assert.Equal(t, 0, cfg.Workflow.HistoryRowCeiling)
	assert.Equal(t, "Archivio", cfg.Storage.RemoteFolder)
	assert.True(t, cfg.Workflow.AuditSheet, "untouched defaults survive")
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"WIP_SERVER_PORT": "70000"}},
		{"bad history mode", map[string]string{"WIP_WORKFLOW_HISTORY_MODE": "weekly"}},
		{"bad backend", map[string]string{"WIP_STORAGE_BACKEND": "s3"}},
		{"drive without credentials", map[string]string{"WIP_STORAGE_BACKEND": "drive"}},
		{"bad log level", map[string]string{"WIP_LOGGING_LEVEL": "chatty"}},
		{"unparsable number", map[string]string{"WIP_WORKFLOW_EXPECTED_EXPORTS": "eight"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("WIP_PATHS_EXECUTABLE_DIR", t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFile("")
			assert.Error(t, err)
		})
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFile_NormalizesCase(t *testing.T) {
	t.Setenv("WIP_PATHS_EXECUTABLE_DIR", t.TempDir())
	t.Setenv("WIP_WORKFLOW_HISTORY_MODE", " FLAT ")
	t.Setenv("WIP_STORAGE_BACKEND", "None")

	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, "flat", cfg.Workflow.HistoryMode)
	assert.Equal(t, "none", cfg.Storage.Backend)
}

func TestHistoryBackupName(t *testing.T) {
	ts := time.Date(2024, 1, 5, 14, 3, 9, 0, time.UTC)
	assert.Equal(t, "storico_backup_20240105_140309.xlsx", HistoryBackupName(ts))
}
