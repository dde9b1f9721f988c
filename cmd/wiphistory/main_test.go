package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryCommandRequiresInputs(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	yaml := "paths:\n  executable_dir: " + dir + "\n" +
		"logging:\n  output: console\n" +
		"storage:\n  backend: none\n"
	require.NoError(t, os.WriteFile(configFile, []byte(yaml), 0600))

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"--config", configFile, "--out", filepath.Join(dir, "out"),
		"--current", filepath.Join(dir, "missing.xlsx")})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no file given for unified")
	assert.Contains(t, err.Error(), "no file given for wbe")
	assert.Contains(t, err.Error(), "missing.xlsx does not exist")
	assert.Empty(t, buf.String())
}
