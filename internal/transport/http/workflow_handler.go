package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/config"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/dataprocessing"
	apperrors "github.com/Ang3l-dev/Ang3l-Dash/internal/errors"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/middleware"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/services"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/validation"
	"github.com/Ang3l-dev/Ang3l-Dash/pkg/contracts/domain"
)

// Multipart field names of the workflow uploads.
const (
	FieldExports   = "exports"
	FieldUnified   = "unified"
	FieldWBE       = "wbe"
	FieldMaterials = "materials"
	FieldCurrent   = "current"
	FieldOlder     = "older"
	FieldAsOf      = "as_of"
	FieldUpload    = "upload"
)

// multipartMemory is the part of a form kept in memory; the rest spills
// to temporary files.
const multipartMemory = 32 << 20

// WorkflowRunner runs the reconciliation workflows.
type WorkflowRunner interface {
	MergeExports(ctx context.Context, req services.Request, exports []dataprocessing.Export) (*services.Result, error)
	VerifyReferences(ctx context.Context, req services.Request, in services.VerifyInput) (*services.Result, error)
	UpdateHistory(ctx context.Context, req services.Request, in services.HistoryInput) (*services.Result, error)
}

// WorkflowHandler handles the workflow upload endpoints.
type WorkflowHandler struct {
	service        WorkflowRunner
	validator      *middleware.Validator
	maxUploadBytes int64
	logger         *slog.Logger
	errorHandler   *apperrors.ErrorHandler
}

// NewWorkflowHandler creates a workflow handler. A maxUploadBytes of zero
// or less leaves request bodies unbounded.
func NewWorkflowHandler(service WorkflowRunner, validator *middleware.Validator, maxUploadBytes int64, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *WorkflowHandler {
	if validator == nil {
		validator = middleware.NewValidator()
	}
	return &WorkflowHandler{
		service:        service,
		validator:      validator,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("handler", "workflow")),
		errorHandler:   errorHandler,
	}
}

// Routes returns the workflow routes, mounted under /api/wip.
func (h *WorkflowHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/merge", h.Merge)
	r.Post("/verify", h.Verify)
	r.Post("/history", h.History)
	return r
}

// runForm holds the non-file fields shared by every workflow.
type runForm struct {
	AsOf   string `form:"as_of" validate:"omitempty,isodate"`
	Upload string `form:"upload" validate:"omitempty,oneof=true false 1 0 on off"`
}

// WorkflowResponse is a workflow result plus a download link per artifact.
type WorkflowResponse struct {
	*services.Result
	Downloads map[string]string `json:"downloads"`
}

// Merge handles POST /api/wip/merge
func (h *WorkflowHandler) Merge(w http.ResponseWriter, r *http.Request) {
	req, err := h.parse(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	inputs, err := formFiles(r.MultipartForm, FieldExports, validation.KindExport)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	exports := make([]dataprocessing.Export, 0, len(inputs))
	for _, in := range inputs {
		exports = append(exports, dataprocessing.Export{Name: in.Name, Data: in.Data})
	}

	res, err := h.service.MergeExports(r.Context(), req, exports)
	h.respond(w, r, res, err)
}

// Verify handles POST /api/wip/verify
func (h *WorkflowHandler) Verify(w http.ResponseWriter, r *http.Request) {
	req, err := h.parse(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	var in services.VerifyInput
	if err := formInputs(r.MultipartForm, map[string]*services.Input{
		FieldUnified:   &in.Unified,
		FieldWBE:       &in.WBELookup,
		FieldMaterials: &in.MaterialLookup,
	}); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := h.service.VerifyReferences(r.Context(), req, in)
	h.respond(w, r, res, err)
}

// History handles POST /api/wip/history
func (h *WorkflowHandler) History(w http.ResponseWriter, r *http.Request) {
	req, err := h.parse(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	var in services.HistoryInput
	if err := formInputs(r.MultipartForm, map[string]*services.Input{
		FieldUnified: &in.Unified,
		FieldWBE:     &in.WBELookup,
		FieldCurrent: &in.Current,
		FieldOlder:   &in.Older,
	}); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := h.service.UpdateHistory(r.Context(), req, in)
	h.respond(w, r, res, err)
}

// parse reads the multipart form and builds the workflow request.
func (h *WorkflowHandler) parse(w http.ResponseWriter, r *http.Request) (services.Request, error) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return services.Request{}, err
		}
		return services.Request{}, apperrors.InvalidRequestWithError(err)
	}

	form := runForm{
		AsOf:   strings.TrimSpace(r.FormValue(FieldAsOf)),
		Upload: strings.ToLower(strings.TrimSpace(r.FormValue(FieldUpload))),
	}
	if err := h.validator.Struct(form); err != nil {
		return services.Request{}, err
	}

	req := services.Request{
		User:   middleware.UserEmail(r.Context()),
		Upload: isTruthy(form.Upload),
	}
	if form.AsOf != "" {
		day, err := domain.ParseDay(form.AsOf)
		if err != nil {
			return services.Request{}, apperrors.ErrValidation(FieldAsOf, err.Error())
		}
		req.AsOf = day
	}
	return req, nil
}

func (h *WorkflowHandler) respond(w http.ResponseWriter, r *http.Request, res *services.Result, err error) {
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "Workflow request served",
		slog.String("workflow", string(res.Workflow)),
		slog.String("batch_id", res.BatchID),
		slog.Int("artifacts", len(res.Artifacts)))

	render.Status(r, http.StatusOK)
	render.JSON(w, r, WorkflowResponse{Result: res, Downloads: downloadLinks(res)})
}

// downloadLinks maps every artifact to its download path.
func downloadLinks(res *services.Result) map[string]string {
	links := make(map[string]string, len(res.Artifacts))
	for _, a := range res.Artifacts {
		links[a.Name] = fmt.Sprintf("%s/artifacts/%s/%s",
			config.APIBasePath, url.PathEscape(res.BatchID), url.PathEscape(a.Name))
	}
	return links
}

// formInputs reads at most one file per field. Absent fields stay zero;
// the workflow decides which ones are required.
func formInputs(form *multipart.Form, fields map[string]*services.Input) error {
	for field, dst := range fields {
		inputs, err := formFiles(form, field, validation.KindSpreadsheet)
		if err != nil {
			return err
		}
		switch len(inputs) {
		case 0:
		case 1:
			*dst = inputs[0]
		default:
			return apperrors.ErrValidation(field, "only one file may be uploaded")
		}
	}
	return nil
}

func formFiles(form *multipart.Form, field string, kind validation.InputKind) ([]services.Input, error) {
	if form == nil {
		return nil, nil
	}
	headers := form.File[field]
	inputs := make([]services.Input, 0, len(headers))
	for _, fh := range headers {
		if err := validation.ValidateUploadName(fh.Filename, kind); err != nil {
			return nil, apperrors.ErrValidation(field, err.Error())
		}
		data, err := readPart(fh)
		if err != nil {
			return nil, apperrors.NewInputError(fmt.Sprintf("could not read upload %q", fh.Filename), err)
		}
		inputs = append(inputs, services.Input{Name: fh.Filename, Data: data})
	}
	return inputs, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func isTruthy(s string) bool {
	switch s {
	case "true", "1", "on":
		return true
	}
	return false
}
