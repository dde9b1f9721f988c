package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	ExecutableDir string
	DataDir       string
	ReportsDir    string
	UploadsDir    string
	LogsDir       string
	UsersFile     string
}

// NewPaths resolves the configured layout. Relative entries are joined to
// the executable directory.
func NewPaths(cfg PathsConfig) *Paths {
	base := cfg.ExecutableDir
	resolve := func(p, fallback string) string {
		if p == "" {
			p = fallback
		}
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	dataDir := resolve(cfg.DataDir, DefaultDataDir)
	return &Paths{
		ExecutableDir: base,
		DataDir:       dataDir,
		ReportsDir:    filepath.Join(dataDir, "reports"),
		UploadsDir:    filepath.Join(dataDir, "uploads"),
		LogsDir:       resolve(cfg.LogsDir, DefaultLogsDir),
		UsersFile:     resolve(cfg.UsersFile, DefaultUsersFile),
	}
}

// GetPaths returns the default layout relative to the executable location.
// All paths are ALWAYS relative to the executable directory, never the
// current working directory.
func GetPaths() (*Paths, error) {
	dir, err := executableDir()
	if err != nil {
		return nil, err
	}
	return NewPaths(PathsConfig{ExecutableDir: dir}), nil
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return filepath.Dir(exe), nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ReportsDir, p.UploadsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetBatchDir returns the directory holding the artifacts of one workflow run.
func (p *Paths) GetBatchDir(batchID string) string {
	return filepath.Join(p.ReportsDir, batchID)
}

// GetUploadPath returns the path for an uploaded input file
func (p *Paths) GetUploadPath(filename string) string {
	return filepath.Join(p.UploadsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs the resolved layout
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("reports", p.ReportsDir),
			slog.String("uploads", p.UploadsDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("files",
			slog.String("users", p.UsersFile),
			slog.Bool("users_exists", FileExists(p.UsersFile)),
		))
}
