package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/config"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/history"
	"github.com/Ang3l-dev/Ang3l-Dash/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Comma     rune // defaults to ','
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// Encode writes options as CSV to w.
func Encode(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if options.Comma != 0 {
		writer.Comma = options.Comma
	}

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSV writes a CSV file. Relative paths land in the reports directory.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	slog.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	if err := Encode(file, options); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteHistoryCSV writes the history of out to w in the layout of its mode.
func WriteHistoryCSV(w io.Writer, out history.Outcome) error {
	opts := WriteOptions{BOMPrefix: true}
	if out.Mode == history.ModeFlat {
		opts.Headers = history.FlatColumns
		opts.Records = make([][]string, 0, len(out.Flat))
		for _, row := range out.Flat {
			opts.Records = append(opts.Records, []string{
				row.WBS, formatDecimal(row.Value), formatDay(row.Date), row.Area,
			})
		}
		return Encode(w, opts)
	}

	opts.Headers = []string{domain.ColumnArea, domain.ColumnDataAggiornamento, domain.ColumnValore}
	opts.Records = make([][]string, 0, len(out.Series))
	for _, row := range out.Series {
		opts.Records = append(opts.Records, []string{
			row.Area, formatDay(row.Date), formatDecimal(row.Value),
		})
	}
	return Encode(w, opts)
}

// resolvePath resolves a path to the reports directory unless absolute
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return w.paths.GetReportPath(filePath)
}
