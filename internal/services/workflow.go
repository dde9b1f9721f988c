package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/config"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/dataprocessing"
	apperrors "github.com/Ang3l-dev/Ang3l-Dash/internal/errors"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/exporter"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/history"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/infrastructure"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/storage"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/tabular"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/validation"
	"github.com/Ang3l-dev/Ang3l-Dash/pkg/contracts/domain"
)

// Workflow names a reconciliation workflow.
type Workflow string

const (
	WorkflowMerge   Workflow = "merge"
	WorkflowVerify  Workflow = "verify"
	WorkflowHistory Workflow = "history"
)

// Event types broadcast while workflows run.
const (
	EventWorkflowStarted   = "workflow_started"
	EventWorkflowCompleted = "workflow_completed"
	EventWorkflowFailed    = "workflow_failed"
)

// EventBroadcaster receives workflow lifecycle events.
type EventBroadcaster interface {
	Broadcast(messageType string, data interface{})
}

// Request carries the per-call context of a workflow run.
type Request struct {
	User string
	// AsOf is the business date of the run; zero means today.
	AsOf domain.Day
	// Upload publishes the artifacts to the remote store.
	Upload bool
}

// Input is one uploaded file held in memory.
type Input struct {
	Name string
	Data []byte
}

// Present reports whether the input was supplied.
func (in Input) Present() bool { return len(in.Data) > 0 }

// VerifyInput holds the files of the reference check.
type VerifyInput struct {
	Unified        Input
	WBELookup      Input
	MaterialLookup Input
}

// HistoryInput holds the files of a history update. Current and Older are
// optional.
type HistoryInput struct {
	Unified   Input
	WBELookup Input
	Current   Input
	Older     Input
}

// ReferenceSummary is the outcome of the reference check.
type ReferenceSummary struct {
	Passed           bool               `json:"passed"`
	RecordsChecked   int                `json:"records_checked"`
	MissingWBE       domain.MissingKeys `json:"missing_wbe"`
	MissingMaterials domain.MissingKeys `json:"missing_materials"`
}

// HistorySummary is the outcome of a history update.
type HistorySummary struct {
	Mode       history.Mode    `json:"mode"`
	Rows       int             `json:"rows"`
	Seeds      int             `json:"seeds"`
	RolledOver bool            `json:"rolled_over"`
	Areas      int             `json:"areas"`
	Unmapped   int             `json:"unmapped_records"`
	Total      decimal.Decimal `json:"total"`
}

// Result is what a completed workflow returns.
type Result struct {
	BatchID     string                       `json:"batch_id"`
	Workflow    Workflow                     `json:"workflow"`
	User        string                       `json:"user,omitempty"`
	AsOf        domain.Day                   `json:"as_of"`
	Records     int                          `json:"records"`
	Files       []dataprocessing.FileSummary `json:"files,omitempty"`
	References  *ReferenceSummary            `json:"references,omitempty"`
	History     *HistorySummary              `json:"history,omitempty"`
	Artifacts   []Artifact                   `json:"artifacts"`
	Diagnostics domain.Diagnostics           `json:"diagnostics"`
}

// Artifact returns the named artifact of the result.
func (r *Result) Artifact(name string) (Artifact, bool) {
	for _, a := range r.Artifacts {
		if a.Name == name {
			return a, true
		}
	}
	return Artifact{}, false
}

// WorkflowDeps are the collaborators of a WorkflowService. Only Config is
// required.
type WorkflowDeps struct {
	Config    config.WorkflowConfig
	Storage   config.StorageConfig
	Artifacts *ArtifactRepository
	Store     storage.ArtifactStore
	Events    EventBroadcaster
	Tracer    trace.Tracer
	Metrics   *infrastructure.BusinessMetrics
	Logger    *slog.Logger
	Now       func() time.Time
}

// WorkflowService runs the reconciliation workflows.
type WorkflowService struct {
	cfg        config.WorkflowConfig
	storageCfg config.StorageConfig
	aggregator *dataprocessing.SnapshotAggregator
	merger     *history.Merger
	artifacts  *ArtifactRepository
	store      storage.ArtifactStore
	events     EventBroadcaster
	tracer     trace.Tracer
	metrics    *infrastructure.BusinessMetrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewWorkflowService creates a workflow service.
func NewWorkflowService(deps WorkflowDeps) (*WorkflowService, error) {
	mode, err := history.ParseMode(deps.Config.HistoryMode)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid history mode", err)
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.InstrumentationName)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger = logger.With(slog.String("component", "workflow"))

	return &WorkflowService{
		cfg:        deps.Config,
		storageCfg: deps.Storage,
		aggregator: dataprocessing.NewSnapshotAggregator(deps.Config.UnmappedArea),
		merger:     history.NewMerger(mode, deps.Config.HistoryRowCeiling, logger),
		artifacts:  deps.Artifacts,
		store:      deps.Store,
		events:     deps.Events,
		tracer:     tracer,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        now,
	}, nil
}

// MergeExports consolidates the text exports into the unified workbook.
func (s *WorkflowService) MergeExports(ctx context.Context, req Request, exports []dataprocessing.Export) (*Result, error) {
	return s.run(ctx, WorkflowMerge, req, func(ctx context.Context, res *Result) error {
		if len(exports) == 0 {
			return apperrors.NewInputError("no WIP exports supplied", ErrMissingInput)
		}
		if want := s.cfg.ExpectedExports; want > 0 && len(exports) != want {
			return apperrors.NewInputError(
				fmt.Sprintf("exactly %d exports are required, got %d", want, len(exports)),
				ErrWrongExportCount).WithContext("expected", want).WithContext("received", len(exports))
		}

		merged := dataprocessing.Consolidate(exports)
		res.Records = len(merged.Records)
		res.Files = merged.Files
		res.Diagnostics = append(res.Diagnostics, merged.Diagnostics...)
		if s.metrics != nil {
			s.metrics.RecordsParsed.Add(ctx, int64(res.Records))
		}
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Int("wip.exports", len(exports)),
			attribute.Int("wip.records", res.Records))

		var buf bytes.Buffer
		if err := exporter.WriteUnified(&buf, merged.Records); err != nil {
			return fmt.Errorf("write unified workbook: %w", err)
		}
		res.Artifacts = append(res.Artifacts, newArtifact(config.UnifiedWorkbookName, ContentTypeXLSX, buf.Bytes()))
		return nil
	})
}

// VerifyReferences lists the WBS and material codes missing from the lookups.
func (s *WorkflowService) VerifyReferences(ctx context.Context, req Request, in VerifyInput) (*Result, error) {
	return s.run(ctx, WorkflowVerify, req, func(ctx context.Context, res *Result) error {
		if err := requireInputs(map[string]Input{
			"unified workbook": in.Unified,
			"WBE lookup":       in.WBELookup,
			"material lookup":  in.MaterialLookup,
		}); err != nil {
			return err
		}

		records, err := s.unifiedRecords(in.Unified, domain.ColumnCodiceWBS, domain.ColumnMateriale)
		if err != nil {
			return err
		}
		wbeTable, err := readTable("WBE lookup", in.WBELookup)
		if err != nil {
			return err
		}
		wbe, diags, err := tabular.LoadWBELookup(wbeTable)
		if err != nil {
			return schemaError("WBE lookup", err)
		}
		res.Diagnostics = append(res.Diagnostics, diags...)

		matTable, err := readTable("material lookup", in.MaterialLookup)
		if err != nil {
			return err
		}
		materials, diags, err := tabular.LoadMaterialLookup(matTable)
		if err != nil {
			return schemaError("material lookup", err)
		}
		res.Diagnostics = append(res.Diagnostics, diags...)

		report := validation.CheckReferences(records, wbe, materials)
		res.Records = report.RecordsChecked
		res.References = &ReferenceSummary{
			Passed:           report.Passed(),
			RecordsChecked:   report.RecordsChecked,
			MissingWBE:       report.MissingWBE,
			MissingMaterials: report.MissingMaterials,
		}
		res.Diagnostics = append(res.Diagnostics, report.Diagnostics()...)
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Int("wip.missing_wbe", len(report.MissingWBE)),
			attribute.Int("wip.missing_materials", len(report.MissingMaterials)))

		var buf bytes.Buffer
		if err := exporter.WriteMissingReport(&buf, report.MissingWBE, report.MissingMaterials); err != nil {
			return fmt.Errorf("write missing-keys report: %w", err)
		}
		res.Artifacts = append(res.Artifacts, newArtifact(config.MissingReportName, ContentTypeXLSX, buf.Bytes()))
		return nil
	})
}

// UpdateHistory folds today's per-area snapshot into the history.
func (s *WorkflowService) UpdateHistory(ctx context.Context, req Request, in HistoryInput) (*Result, error) {
	return s.run(ctx, WorkflowHistory, req, func(ctx context.Context, res *Result) error {
		if err := requireInputs(map[string]Input{
			"unified workbook": in.Unified,
			"WBE lookup":       in.WBELookup,
		}); err != nil {
			return err
		}

		records, err := s.unifiedRecords(in.Unified, domain.ColumnCodiceWBS, domain.ColumnValoreLavorazione)
		if err != nil {
			return err
		}
		wbeTable, err := readTable("WBE lookup", in.WBELookup)
		if err != nil {
			return err
		}
		wbe, diags, err := tabular.LoadWBELookup(wbeTable)
		if err != nil {
			return schemaError("WBE lookup", err)
		}
		res.Diagnostics = append(res.Diagnostics, diags...)

		current, err := readOptionalTable("current history", in.Current)
		if err != nil {
			return err
		}
		older, err := readOptionalTable("older history", in.Older)
		if err != nil {
			return err
		}

		snapshot := s.aggregator.Aggregate(records, wbe, res.AsOf)
		out, err := s.merger.Update(history.Request{Current: current, Older: older, Snapshot: snapshot})
		if err != nil {
			return schemaError("history", err)
		}
		res.Records = len(records)
		res.Diagnostics = append(res.Diagnostics, out.Diagnostics...)
		res.History = &HistorySummary{
			Mode:       out.Mode,
			Rows:       out.Rows(),
			Seeds:      len(out.Seeds),
			RolledOver: out.RolledOver,
			Areas:      len(snapshot.Snapshots),
			Unmapped:   snapshot.Unmapped,
			Total:      snapshot.Total,
		}
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.String("wip.history_mode", string(out.Mode)),
			attribute.Int("wip.history_rows", out.Rows()),
			attribute.Bool("wip.rolled_over", out.RolledOver))

		var detail []domain.DetailRow
		if s.cfg.AuditSheet {
			detail = snapshot.Detail
		}
		var buf bytes.Buffer
		if err := exporter.WriteHistory(&buf, out, detail); err != nil {
			return fmt.Errorf("write history workbook: %w", err)
		}
		res.Artifacts = append(res.Artifacts, newArtifact(config.HistoryWorkbookName, ContentTypeXLSX, buf.Bytes()))

		if s.cfg.HistoryCSV {
			var csvBuf bytes.Buffer
			if err := exporter.WriteHistoryCSV(&csvBuf, out); err != nil {
				return fmt.Errorf("write history csv: %w", err)
			}
			res.Artifacts = append(res.Artifacts, newArtifact(config.HistoryCSVName, ContentTypeCSV, csvBuf.Bytes()))
		}

		if out.RolledOver {
			if s.metrics != nil {
				s.metrics.HistoryRollovers.Add(ctx, 1)
			}
			backup := newArtifact(config.HistoryBackupName(s.now()), ContentTypeXLSX, in.Current.Data)
			res.Artifacts = append(res.Artifacts, backup)
		}
		return nil
	})
}

// run wraps a workflow body with tracing, metrics, persistence, upload and
// lifecycle events.
func (s *WorkflowService) run(ctx context.Context, wf Workflow, req Request, body func(context.Context, *Result) error) (*Result, error) {
	start := time.Now()
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := s.tracer.Start(ctx, "workflow."+string(wf),
		trace.WithAttributes(
			attribute.String("workflow", string(wf)),
			attribute.String("user", req.User)))
	defer span.End()

	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = domain.DayOf(s.now())
	}
	res := &Result{
		BatchID:     uuid.NewString(),
		Workflow:    wf,
		User:        req.User,
		AsOf:        asOf,
		Artifacts:   []Artifact{},
		Diagnostics: domain.Diagnostics{},
	}
	logger := s.logger.With(
		slog.String("workflow", string(wf)),
		slog.String("batch_id", res.BatchID),
		slog.String("user", req.User))

	logger.InfoContext(ctx, "Workflow started", slog.String("as_of", asOf.String()))
	s.broadcast(EventWorkflowStarted, res, nil)

	err := body(ctx, res)
	if err == nil {
		err = s.persist(res)
	}
	infrastructure.RecordWorkflow(ctx, s.metrics, string(wf), time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		logger.WarnContext(ctx, "Workflow failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		s.broadcast(EventWorkflowFailed, res, err)
		return nil, err
	}

	if req.Upload {
		s.upload(ctx, res, logger)
	}

	logger.InfoContext(ctx, "Workflow completed",
		slog.Int("records", res.Records),
		slog.Int("artifacts", len(res.Artifacts)),
		slog.Int("diagnostics", len(res.Diagnostics)),
		slog.Bool("warnings", res.Diagnostics.HasWarnings()),
		slog.Duration("duration", time.Since(start)))
	s.broadcast(EventWorkflowCompleted, res, nil)
	return res, nil
}

func (s *WorkflowService) persist(res *Result) error {
	if s.artifacts == nil {
		return nil
	}
	for _, a := range res.Artifacts {
		if err := s.artifacts.Save(res.BatchID, a); err != nil {
			return apperrors.NewStorageError("could not keep artifact "+a.Name, err)
		}
	}
	return nil
}

// upload publishes every artifact. Failures become diagnostics: the local
// copies stay downloadable.
func (s *WorkflowService) upload(ctx context.Context, res *Result, logger *slog.Logger) {
	if s.store == nil || s.store.Backend() == storage.BackendNone {
		res.Diagnostics.Warn(domain.CodeUploadFailed, "remote storage is disabled", "")
		return
	}
	if s.storageCfg.UploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.storageCfg.UploadTimeout)
		defer cancel()
	}
	folder := s.storageCfg.RemoteFolder
	if folder == "" {
		folder = config.DefaultRemoteFolder
	}

	for i := range res.Artifacts {
		a := &res.Artifacts[i]
		err := s.store.Store(ctx, a.Data, folder, a.Name)
		s.recordUpload(ctx, err)
		if err != nil {
			logger.WarnContext(ctx, "Artifact upload failed",
				slog.String("artifact", a.Name),
				slog.String("backend", s.store.Backend()),
				slog.String("error", err.Error()))
			res.Diagnostics.Warn(domain.CodeUploadFailed,
				fmt.Sprintf("upload to %s/%s failed: %v", folder, a.Name, err), a.Name)
			continue
		}
		a.Uploaded = true
		res.Diagnostics.Info(domain.CodeUploaded,
			fmt.Sprintf("uploaded to %s/%s", folder, a.Name), a.Name)
	}
}

func (s *WorkflowService) recordUpload(ctx context.Context, err error) {
	if s.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	s.metrics.ArtifactUploads.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", s.store.Backend()),
		attribute.String("status", status)))
}

func (s *WorkflowService) broadcast(eventType string, res *Result, err error) {
	if s.events == nil {
		return
	}
	data := map[string]interface{}{
		"batch_id": res.BatchID,
		"workflow": res.Workflow,
		"user":     res.User,
		"as_of":    res.AsOf.String(),
	}
	switch eventType {
	case EventWorkflowCompleted:
		names := make([]string, 0, len(res.Artifacts))
		for _, a := range res.Artifacts {
			names = append(names, a.Name)
		}
		data["artifacts"] = names
		data["records"] = res.Records
		data["warnings"] = res.Diagnostics.HasWarnings()
	case EventWorkflowFailed:
		data["error"] = err.Error()
	}
	s.events.Broadcast(eventType, data)
}

func (s *WorkflowService) unifiedRecords(in Input, required ...string) ([]domain.WipRecord, error) {
	t, err := readTable("unified workbook", in)
	if err != nil {
		return nil, err
	}
	records, err := tabular.UnifiedRecords(t, required...)
	if err != nil {
		return nil, schemaError("unified workbook", err)
	}
	return records, nil
}

func requireInputs(inputs map[string]Input) error {
	var missing []string
	for role, in := range inputs {
		if !in.Present() {
			missing = append(missing, role)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return apperrors.NewInputError("missing "+strings.Join(missing, ", "), ErrMissingInput).
		WithContext("missing", missing)
}

func readTable(role string, in Input) (*tabular.Table, error) {
	t, err := tabular.ReadWorkbookBytes(in.Name, in.Data)
	if err != nil {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("%s %q could not be read", role, in.Name),
			fmt.Errorf("%w: %w", ErrUnreadableWorkbook, err))
	}
	return t, nil
}

func readOptionalTable(role string, in Input) (*tabular.Table, error) {
	if !in.Present() {
		return nil, nil
	}
	return readTable(role, in)
}

func schemaError(role string, err error) error {
	if errors.Is(err, tabular.ErrSchemaUnrecognized) {
		return apperrors.NewSchemaError(role+" columns not recognized", err)
	}
	return apperrors.NewParsingError(role+" could not be processed", err)
}
