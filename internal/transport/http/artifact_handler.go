package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "github.com/Ang3l-dev/Ang3l-Dash/internal/errors"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/services"
)

// ArtifactReader reads the stored artifacts of past runs.
type ArtifactReader interface {
	Open(batchID, name string) ([]byte, error)
	List(batchID string) ([]string, error)
}

// ArtifactHandler serves workflow artifacts for download.
type ArtifactHandler struct {
	artifacts    ArtifactReader
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewArtifactHandler creates an artifact handler.
func NewArtifactHandler(artifacts ArtifactReader, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *ArtifactHandler {
	return &ArtifactHandler{
		artifacts:    artifacts,
		logger:       logger.With(slog.String("handler", "artifacts")),
		errorHandler: errorHandler,
	}
}

// Routes returns the artifact routes, mounted under /api/artifacts.
func (h *ArtifactHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{batch}", h.List)
	r.Get("/{batch}/{name}", h.Download)
	return r
}

// List handles GET /api/artifacts/{batch}
func (h *ArtifactHandler) List(w http.ResponseWriter, r *http.Request) {
	batch := chi.URLParam(r, "batch")
	names, err := h.artifacts.List(batch)
	if err != nil {
		h.errorHandler.HandleError(w, r, artifactError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"batch_id":  batch,
		"artifacts": names,
	})
}

// Download handles GET /api/artifacts/{batch}/{name}
func (h *ArtifactHandler) Download(w http.ResponseWriter, r *http.Request) {
	batch := chi.URLParam(r, "batch")
	name := chi.URLParam(r, "name")

	data, err := h.artifacts.Open(batch, name)
	if err != nil {
		h.errorHandler.HandleError(w, r, artifactError(err))
		return
	}
	h.logger.InfoContext(r.Context(), "Artifact downloaded",
		slog.String("batch_id", batch),
		slog.String("name", name),
		slog.Int("size", len(data)))

	w.Header().Set("Content-Type", contentTypeFor(name))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func artifactError(err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidBatchID):
		return apperrors.ErrValidation("batch", err.Error())
	case errors.Is(err, services.ErrArtifactNotFound):
		return apperrors.ErrArtifactNotFound
	}
	return err
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return services.ContentTypeXLSX
	case ".csv":
		return services.ContentTypeCSV
	}
	return "application/octet-stream"
}
