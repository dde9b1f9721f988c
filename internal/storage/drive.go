package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// DriveStore uploads artifacts into folders below a Google Drive parent
// folder. Folders are looked up by name and created when missing.
type DriveStore struct {
	service  *drive.Service
	parentID string
	logger   *slog.Logger

	mu      sync.Mutex
	folders map[string]string
}

// NewDriveStore authenticates with a service account key file.
func NewDriveStore(ctx context.Context, credentialsFile, parentID string, logger *slog.Logger) (*DriveStore, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read drive credentials: %w", err)
	}
	svc, err := drive.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(drive.DriveFileScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return NewDriveStoreWithService(svc, parentID, logger), nil
}

// NewDriveStoreWithService wraps an existing Drive client.
func NewDriveStoreWithService(svc *drive.Service, parentID string, logger *slog.Logger) *DriveStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &DriveStore{
		service:  svc,
		parentID: parentID,
		logger:   logger,
		folders:  make(map[string]string),
	}
}

// Backend implements ArtifactStore.
func (s *DriveStore) Backend() string { return BackendDrive }

// Store implements ArtifactStore.
func (s *DriveStore) Store(ctx context.Context, data []byte, folder, name string) error {
	if err := checkNames(folder, name); err != nil {
		return err
	}
	folderID, err := s.folderID(ctx, folder)
	if err != nil {
		return err
	}

	created, err := s.service.Files.Create(&drive.File{
		Name:    name,
		Parents: []string{folderID},
	}).
		Media(bytes.NewReader(data)).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", folder, name, err)
	}

	s.logger.InfoContext(ctx, "Artifact uploaded",
		slog.String("backend", BackendDrive),
		slog.String("folder", folder),
		slog.String("name", name),
		slog.String("file_id", created.Id),
		slog.Int("size_bytes", len(data)))
	return nil
}

func (s *DriveStore) folderID(ctx context.Context, folder string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.folders[folder]; ok {
		return id, nil
	}

	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escapeQuery(folder), folderMimeType)
	if s.parentID != "" {
		q += fmt.Sprintf(" and '%s' in parents", escapeQuery(s.parentID))
	}
	list, err := s.service.Files.List().
		Q(q).
		Fields("files(id, name)").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("lookup folder %q: %w", folder, err)
	}
	if len(list.Files) > 0 {
		s.folders[folder] = list.Files[0].Id
		return list.Files[0].Id, nil
	}

	meta := &drive.File{Name: folder, MimeType: folderMimeType}
	if s.parentID != "" {
		meta.Parents = []string{s.parentID}
	}
	created, err := s.service.Files.Create(meta).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", folder, err)
	}
	s.logger.InfoContext(ctx, "Drive folder created",
		slog.String("folder", folder),
		slog.String("folder_id", created.Id))
	s.folders[folder] = created.Id
	return created.Id, nil
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
