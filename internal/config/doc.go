// Package config loads the service configuration and resolves the
// on-disk layout.
//
// Values come from three layers, later ones winning:
//
//  1. Default()
//  2. a YAML file (WIP_CONFIG_FILE, or config.yaml / configs/config.yaml)
//  3. WIP_* environment variables, e.g. WIP_SERVER_PORT=9090 or
//     WIP_WORKFLOW_HISTORY_MODE=flat
//
// The result is checked with validator struct tags at load time.
//
// Paths are resolved relative to the executable, never the working
// directory:
//
//	paths := cfg.ResolvedPaths()
//	dir := paths.GetBatchDir(batchID)
package config
