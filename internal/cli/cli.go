// Package cli holds the bootstrap and output helpers shared by the
// wipmerge, wipverify and wiphistory commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/config"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/files"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/infrastructure"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/services"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/storage"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/validation"
	"github.com/Ang3l-dev/Ang3l-Dash/pkg/contracts/domain"
)

// Flags are the options shared by every workflow command.
type Flags struct {
	ConfigFile string
	OutDir     string
	AsOf       string
	Upload     bool
	User       string
}

// Bind registers the shared flags on cmd.
func (f *Flags) Bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.ConfigFile, "config", "", "YAML configuration file (default: WIP_CONFIG_FILE or ./config.yaml)")
	fs.StringVarP(&f.OutDir, "out", "o", "", "directory receiving the artifacts (default: data/reports next to the executable)")
	fs.StringVar(&f.AsOf, "as-of", "", "business date YYYY-MM-DD (default: today)")
	fs.BoolVar(&f.Upload, "upload", false, "publish the artifacts to the configured remote storage")
	fs.StringVar(&f.User, "user", os.Getenv("USER"), "operator recorded on the run")
}

// Request builds the workflow request from the flags.
func (f *Flags) Request() (services.Request, error) {
	req := services.Request{User: f.User, Upload: f.Upload}
	if s := strings.TrimSpace(f.AsOf); s != "" {
		day, err := domain.ParseDay(s)
		if err != nil {
			return req, fmt.Errorf("--as-of: %w", err)
		}
		req.AsOf = day
	}
	return req, nil
}

// Env is what a command needs to run a workflow from disk.
type Env struct {
	Config    *config.Config
	Paths     *config.Paths
	Logger    *slog.Logger
	Validator *validation.FileValidator
	Discovery *files.Discovery
	Workflows *services.WorkflowService
	OutDir    string
}

// Bootstrap loads the configuration and builds the workflow service. The
// service keeps no artifact repository: commands write their results to
// OutDir themselves.
func Bootstrap(ctx context.Context, tool string, f *Flags) (*Env, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.ConfigFile != "" {
		cfg, err = config.LoadFile(f.ConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	paths := cfg.ResolvedPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return nil, err
	}
	if !filepath.IsAbs(cfg.Logging.FilePath) {
		cfg.Logging.FilePath = paths.GetLogPath(tool + ".log")
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = infrastructure.WithComponent(logger, tool)

	var store storage.ArtifactStore = storage.NopStore{}
	if f.Upload {
		if store, err = storage.New(ctx, cfg.Storage, paths, logger); err != nil {
			return nil, fmt.Errorf("failed to initialize artifact store: %w", err)
		}
	}

	workflows, err := services.NewWorkflowService(services.WorkflowDeps{
		Config:  cfg.Workflow,
		Storage: cfg.Storage,
		Store:   store,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	out := f.OutDir
	if out == "" {
		out = paths.ReportsDir
	}
	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateOutputDirectory(out); err != nil {
		return nil, err
	}

	return &Env{
		Config:    cfg,
		Paths:     paths,
		Logger:    logger,
		Validator: validator,
		Discovery: files.NewDiscovery(paths.ExecutableDir),
		Workflows: workflows,
		OutDir:    out,
	}, nil
}

// ReadInput loads one input file. An empty path yields an absent input.
func ReadInput(path string) (services.Input, error) {
	if path == "" {
		return services.Input{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return services.Input{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return services.Input{Name: filepath.Base(path), Data: data}, nil
}

// WriteArtifacts stores every artifact of res in dir and returns the
// written paths.
func WriteArtifacts(dir string, res *services.Result, logger *slog.Logger) ([]string, error) {
	m := files.NewManager(dir, logger)
	written := make([]string, 0, len(res.Artifacts))
	for _, a := range res.Artifacts {
		if err := m.WriteFile(a.Name, a.Data); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", a.Name, err)
		}
		path, _ := m.Resolve(a.Name)
		written = append(written, path)
	}
	return written, nil
}

// PrintResult writes a human summary of a run.
func PrintResult(w io.Writer, res *services.Result, written []string) {
	fmt.Fprintf(w, "%s run %s (as of %s): %d records\n", res.Workflow, res.BatchID, res.AsOf, res.Records)
	if ref := res.References; ref != nil {
		fmt.Fprintf(w, "  missing WBE: %d, missing materials: %d\n", len(ref.MissingWBE), len(ref.MissingMaterials))
	}
	if h := res.History; h != nil {
		fmt.Fprintf(w, "  history: %d rows (%s mode), %d seeded, total %s\n", h.Rows, h.Mode, h.Seeds, h.Total.StringFixed(2))
		if h.RolledOver {
			fmt.Fprintln(w, "  history rolled over: the previous file was backed up")
		}
	}
	for _, path := range written {
		fmt.Fprintf(w, "  wrote %s\n", path)
	}
	for _, d := range res.Diagnostics {
		source := ""
		if d.Source != "" {
			source = " [" + d.Source + "]"
		}
		fmt.Fprintf(w, "  %s %s%s: %s\n", strings.ToUpper(string(d.Level)), d.Code, source, d.Message)
	}
}

// Finish writes and reports a completed run.
func (e *Env) Finish(w io.Writer, res *services.Result) error {
	written, err := WriteArtifacts(e.OutDir, res, e.Logger)
	if err != nil {
		return err
	}
	PrintResult(w, res, written)
	return nil
}
