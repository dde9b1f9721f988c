package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/config"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/shared/testutil"
)

func setup(t *testing.T, expected string) (configFile, in, out string) {
	t.Helper()
	dir := t.TempDir()
	configFile = filepath.Join(dir, "config.yaml")
	yaml := "paths:\n  executable_dir: " + dir + "\n" +
		"logging:\n  output: console\n" +
		"workflow:\n  expected_exports: " + expected + "\n" +
		"storage:\n  backend: none\n"
	require.NoError(t, os.WriteFile(configFile, []byte(yaml), 0600))

	in = filepath.Join(dir, "exports")
	require.NoError(t, os.MkdirAll(in, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(in, "wip_1.txt"),
		testutil.ExportFile(testutil.WipLine("W-1", "M-1", "10,00")), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(in, "wip_2.txt"),
		testutil.ExportFile(testutil.WipLine("W-2", "M-2", "5,50")), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.md"), []byte("ignored"), 0600))
	return configFile, in, filepath.Join(dir, "out")
}

func execute(args ...string) (string, error) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestMergeCommand(t *testing.T) {
	configFile, in, out := setup(t, "2")

	text, err := execute("--config", configFile, "--in", in, "--out", out, "--as-of", "2024-01-05")
	require.NoError(t, err)
	assert.Contains(t, text, "merge run")
	assert.Contains(t, text, "(as of 2024-01-05): 2 records")
	assert.FileExists(t, filepath.Join(out, config.UnifiedWorkbookName))
}

func TestMergeCommandRejectsIncompleteBatch(t *testing.T) {
	configFile, in, out := setup(t, "8")

	_, err := execute("--config", configFile, "--in", in, "--out", out, "--as-of", "2024-01-05")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "holds 2 exports, expected 8")
	assert.NoFileExists(t, filepath.Join(out, config.UnifiedWorkbookName))
}

func TestMergeCommandRejectsBadDate(t *testing.T) {
	configFile, in, out := setup(t, "2")

	_, err := execute("--config", configFile, "--in", in, "--out", out, "--as-of", "05/01/2024")
	assert.ErrorContains(t, err, "--as-of")
}
