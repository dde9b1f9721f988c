package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrInputMissing is returned when a workflow input file is absent or unusable.
var ErrInputMissing = errors.New("required input missing")

// InputKind is the expected shape of a workflow input file.
type InputKind int

const (
	// KindExport is a WIP text export.
	KindExport InputKind = iota
	// KindSpreadsheet is an xlsx workbook (lookup, unified or history table).
	KindSpreadsheet
)

func (k InputKind) extensions() []string {
	if k == KindSpreadsheet {
		return []string{".xlsx", ".xlsm"}
	}
	return []string{".txt"}
}

// FileValidator checks the files a workflow reads from disk before any
// parsing starts, so that a missing input refuses the run up front.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputDirectory checks that dir exists and is a directory.
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return fmt.Errorf("%w: input directory %s does not exist", ErrInputMissing, dir)
	}
	if err != nil {
		v.logger.Error("Failed to stat input directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return fmt.Errorf("%w: %s is not a directory", ErrInputMissing, dir)
	}
	return nil
}

// ValidateOutputDirectory ensures dir exists and is writable.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return nil
}

// ValidateInput checks that path is a readable, non-empty file of kind.
func (v *FileValidator) ValidateInput(path string, kind InputKind) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Warn("Input file does not exist", slog.String("file", path))
		return fmt.Errorf("%w: %s does not exist", ErrInputMissing, path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory, not a file", ErrInputMissing, path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", ErrInputMissing, path)
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Skipping temporary Excel file", slog.String("file", path))
		return fmt.Errorf("%w: %s is a temporary Excel file", ErrInputMissing, path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !hasExtension(ext, kind.extensions()) {
		return fmt.Errorf("%w: %s has extension %q, want one of %v", ErrInputMissing, path, ext, kind.extensions())
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("Input validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateUploadName checks the client-supplied name of an uploaded input.
// Only the extension and the Excel lock-file prefix are checked; the
// content is judged by the parsers.
func ValidateUploadName(name string, kind InputKind) error {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if strings.HasPrefix(base, "~$") {
		return fmt.Errorf("%w: %s is a temporary Excel file", ErrInputMissing, base)
	}
	ext := strings.ToLower(filepath.Ext(base))
	if !hasExtension(ext, kind.extensions()) {
		return fmt.Errorf("%w: %s has extension %q, want one of %v", ErrInputMissing, base, ext, kind.extensions())
	}
	return nil
}

// RequireInputs validates every named input and reports all failures at
// once. Keys are the role of each file ("wbe", "history", ...).
func (v *FileValidator) RequireInputs(inputs map[string]string, kind InputKind) error {
	roles := make([]string, 0, len(inputs))
	for role := range inputs {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	var errs []error
	for _, role := range roles {
		path := inputs[role]
		if strings.TrimSpace(path) == "" {
			errs = append(errs, fmt.Errorf("%w: no file given for %s", ErrInputMissing, role))
			continue
		}
		if err := v.ValidateInput(path, kind); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", role, err))
		}
	}
	return errors.Join(errs...)
}

// CountExports counts the WIP text exports directly inside dir.
func (v *FileValidator) CountExports(dir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return 0, fmt.Errorf("failed to count exports: %w", err)
	}

	count := 0
	for _, match := range matches {
		info, err := os.Stat(match)
		if err == nil && !info.IsDir() {
			count++
		}
	}

	v.logger.Debug("Exports counted",
		slog.String("directory", dir),
		slog.Int("count", count))
	return count, nil
}

func hasExtension(ext string, allowed []string) bool {
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
