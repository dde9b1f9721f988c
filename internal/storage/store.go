package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/config"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/files"
)

// Backend names accepted in configuration.
const (
	BackendLocal = "local"
	BackendDrive = "drive"
	BackendNone  = "none"
)

// ErrInvalidName is returned for empty or path-like folder and file names.
var ErrInvalidName = errors.New("invalid artifact name")

// ArtifactStore stores bytes at a named location.
type ArtifactStore interface {
	Store(ctx context.Context, data []byte, folder, name string) error
	Backend() string
}

// New builds the store selected by cfg.
func New(ctx context.Context, cfg config.StorageConfig, paths *config.Paths, logger *slog.Logger) (ArtifactStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Backend {
	case BackendLocal, "":
		return NewLocalStore(filepath.Join(paths.DataDir, "published"), logger), nil
	case BackendDrive:
		return NewDriveStore(ctx, cfg.DriveCredentialsFile, cfg.DriveParentFolderID, logger)
	case BackendNone:
		return NopStore{}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// LocalStore writes artifacts below a root directory.
type LocalStore struct {
	files  *files.Manager
	logger *slog.Logger
}

// NewLocalStore creates a store rooted at dir.
func NewLocalStore(dir string, logger *slog.Logger) *LocalStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalStore{files: files.NewManager(dir, logger), logger: logger}
}

// Backend implements ArtifactStore.
func (s *LocalStore) Backend() string { return BackendLocal }

// Root returns the directory artifacts are written to.
func (s *LocalStore) Root() string { return s.files.Root() }

// Store implements ArtifactStore.
func (s *LocalStore) Store(ctx context.Context, data []byte, folder, name string) error {
	if err := checkNames(folder, name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.files.WriteFile(path.Join(folder, name), data); err != nil {
		return fmt.Errorf("store %s/%s: %w", folder, name, err)
	}
	s.logger.InfoContext(ctx, "Artifact stored",
		slog.String("backend", BackendLocal),
		slog.String("folder", folder),
		slog.String("name", name),
		slog.Int("size_bytes", len(data)))
	return nil
}

// NopStore discards every artifact.
type NopStore struct{}

// Backend implements ArtifactStore.
func (NopStore) Backend() string { return BackendNone }

// Store implements ArtifactStore.
func (NopStore) Store(context.Context, []byte, string, string) error { return nil }

func checkNames(folder, name string) error {
	for _, n := range []string{folder, name} {
		n = strings.TrimSpace(n)
		if n == "" || n == "." || n == ".." || strings.ContainsAny(n, `/\`) {
			return fmt.Errorf("%w: %q", ErrInvalidName, n)
		}
	}
	return nil
}
