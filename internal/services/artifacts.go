package services

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/files"
)

// Content types of the produced artifacts.
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"
)

// Artifact is one file produced by a workflow.
type Artifact struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	Uploaded    bool   `json:"uploaded"`
	Data        []byte `json:"-"`
}

func newArtifact(name, contentType string, data []byte) Artifact {
	return Artifact{Name: name, ContentType: contentType, Size: len(data), Data: data}
}

// ArtifactRepository keeps the artifacts of every run on local disk, one
// directory per batch, so they stay downloadable whatever the remote store
// does.
type ArtifactRepository struct {
	files  *files.Manager
	logger *slog.Logger
}

// NewArtifactRepository creates a repository rooted at dir.
func NewArtifactRepository(dir string, logger *slog.Logger) *ArtifactRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArtifactRepository{files: files.NewManager(dir, logger), logger: logger}
}

// Root returns the directory holding the batches.
func (r *ArtifactRepository) Root() string { return r.files.Root() }

// Save writes an artifact into its batch directory.
func (r *ArtifactRepository) Save(batchID string, a Artifact) error {
	rel, err := artifactPath(batchID, a.Name)
	if err != nil {
		return err
	}
	return r.files.WriteFile(rel, a.Data)
}

// Open returns the content of a stored artifact.
func (r *ArtifactRepository) Open(batchID, name string) ([]byte, error) {
	rel, err := artifactPath(batchID, name)
	if err != nil {
		return nil, err
	}
	data, err := r.files.ReadFile(rel)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", ErrArtifactNotFound, batchID, name)
	}
	return data, err
}

// List returns the artifact names of a batch in name order.
func (r *ArtifactRepository) List(batchID string) ([]string, error) {
	if _, err := uuid.Parse(batchID); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBatchID, batchID)
	}
	names, err := r.files.ListFiles(batchID)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: batch %s", ErrArtifactNotFound, batchID)
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func artifactPath(batchID, name string) (string, error) {
	if _, err := uuid.Parse(batchID); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidBatchID, batchID)
	}
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrArtifactNotFound, name)
	}
	return path.Join(batchID, name), nil
}
