package dataprocessing

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/Ang3l-dev/Ang3l-Dash/pkg/contracts/domain"
)

const (
	fieldDelimiter  = "|"
	separatorMarker = "---"
)

// headerMarker identifies the column header line of an export.
var headerMarker = fieldDelimiter + domain.WipColumns[0]

// ParseResult is the outcome of parsing one export.
type ParseResult struct {
	Source   string
	Records  []domain.WipRecord
	Rejected int // non-blank data lines with the wrong field count
	Skipped  int // blank, separator and header lines
	Err      error
}

// Diagnostics converts the result into workflow diagnostics.
func (r ParseResult) Diagnostics() domain.Diagnostics {
	var diags domain.Diagnostics
	switch {
	case r.Err != nil:
		diags.Warn(domain.CodeFileUnreadable,
			fmt.Sprintf("could not read export: %v", r.Err), r.Source)
	case len(r.Records) == 0:
		diags.Warn(domain.CodeFileEmpty, "export contains no valid WIP rows", r.Source)
	}
	if r.Rejected > 0 {
		diags.Info(domain.CodeLinesRejected,
			fmt.Sprintf("%d lines ignored: expected %d fields", r.Rejected, domain.NumColumns), r.Source)
	}
	return diags
}

// ParseExport reads a whole WIP text export from r. A read failure never
// propagates: it is recorded in the result, which then carries no records.
func ParseExport(source string, r io.Reader) ParseResult {
	raw, err := io.ReadAll(r)
	if err != nil {
		return ParseResult{Source: source, Err: err}
	}
	res := ParseBytes(raw)
	res.Source = source
	return res
}

// ParseBytes parses the raw bytes of one export.
func ParseBytes(raw []byte) ParseResult {
	var res ParseResult
	for _, line := range splitLines(decodeLegacy(raw)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, separatorMarker) || strings.HasPrefix(line, headerMarker) {
			res.Skipped++
			continue
		}
		rec, ok := ParseLine(line)
		if !ok {
			res.Rejected++
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

// ParseLine splits one trimmed data line into a record. It reports false
// unless the line yields exactly domain.NumColumns fields.
func ParseLine(line string) (domain.WipRecord, bool) {
	var rec domain.WipRecord
	line = strings.TrimPrefix(line, fieldDelimiter)
	line = strings.TrimSuffix(line, fieldDelimiter)

	fields := strings.Split(line, fieldDelimiter)
	if len(fields) != domain.NumColumns {
		return rec, false
	}
	for i, f := range fields {
		rec[i] = strings.TrimSpace(f)
	}
	return rec, true
}

// decodeLegacy decodes Windows-1252 text. The charmap decoder maps every
// byte, so decoding cannot fail.
func decodeLegacy(raw []byte) string {
	out, _ := charmap.Windows1252.NewDecoder().Bytes(raw)
	return string(out)
}

// splitLines splits on \n, \r\n and bare \r.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}
