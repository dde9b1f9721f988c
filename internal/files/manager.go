package files

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned for paths that would resolve outside the
// manager's root.
var ErrOutsideRoot = errors.New("path escapes root directory")

// Manager reads and writes files below a root directory.
type Manager struct {
	root   string
	logger *slog.Logger
}

// NewManager creates a new file manager rooted at root.
func NewManager(root string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{root: root, logger: logger}
}

// Root returns the managed directory.
func (m *Manager) Root() string { return m.root }

// Resolve joins the slash-separated rel to the root and rejects anything
// that would leave it.
func (m *Manager) Resolve(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimSpace(rel)))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}
	return filepath.Join(m.root, clean), nil
}

// FileExists checks if a file exists at rel
func (m *Manager) FileExists(rel string) bool {
	fullPath, err := m.Resolve(rel)
	if err != nil {
		return false
	}
	info, err := os.Stat(fullPath)
	return err == nil && !info.IsDir()
}

// ReadFile reads the entire content of a file
func (m *Manager) ReadFile(rel string) ([]byte, error) {
	fullPath, err := m.Resolve(rel)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("Reading file",
		slog.String("path", rel),
		slog.String("full_path", fullPath))

	return os.ReadFile(fullPath)
}

// WriteFile writes data to a file, creating parent directories. The data
// is written to a temporary file first and renamed into place.
func (m *Manager) WriteFile(rel string, data []byte) error {
	fullPath, err := m.Resolve(rel)
	if err != nil {
		return err
	}

	m.logger.Info("Writing file",
		slog.String("path", rel),
		slog.String("full_path", fullPath),
		slog.Int("size_bytes", len(data)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// ListFiles returns the names of the files in dir (non-recursive).
func (m *Manager) ListFiles(dir string) ([]string, error) {
	fullPath, err := m.Resolve(dir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && !strings.HasPrefix(entry.Name(), ".tmp-") {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}
