package domain

// DiagnosticLevel grades a diagnostic.
type DiagnosticLevel string

const (
	LevelInfo    DiagnosticLevel = "info"
	LevelWarning DiagnosticLevel = "warning"
	LevelError   DiagnosticLevel = "error"
)

// Diagnostic codes surfaced by the reconciliation workflows.
const (
	CodeFileUnreadable   = "FILE_UNREADABLE"
	CodeFileEmpty        = "FILE_EMPTY"
	CodeLinesRejected    = "LINES_REJECTED"
	CodeMissingWBE       = "MISSING_WBE"
	CodeMissingMaterial  = "MISSING_MATERIAL"
	CodeReferencesOK     = "REFERENCES_OK"
	CodeHistoryRollover  = "HISTORY_ROLLOVER"
	CodeSeeded           = "HISTORY_SEEDED"
	CodeReplacedToday    = "HISTORY_REPLACED_TODAY"
	CodeUnparsableDates  = "UNPARSABLE_DATES"
	CodeRowsDropped      = "HISTORY_ROWS_DROPPED"
	CodeUploadFailed     = "UPLOAD_FAILED"
	CodeUploaded         = "UPLOADED"
	CodeDuplicateLookups = "DUPLICATE_LOOKUP_KEYS"
)

// Diagnostic is a non-fatal outcome reported alongside a workflow result.
type Diagnostic struct {
	Level   DiagnosticLevel `json:"level"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Source  string          `json:"source,omitempty"`
}

// Diagnostics is an ordered list of diagnostics.
type Diagnostics []Diagnostic

// Add appends a diagnostic.
func (d *Diagnostics) Add(level DiagnosticLevel, code, message, source string) {
	*d = append(*d, Diagnostic{Level: level, Code: code, Message: message, Source: source})
}

// Warn appends a warning.
func (d *Diagnostics) Warn(code, message, source string) {
	d.Add(LevelWarning, code, message, source)
}

// Info appends an informational diagnostic.
func (d *Diagnostics) Info(code, message, source string) {
	d.Add(LevelInfo, code, message, source)
}

// HasWarnings reports whether any diagnostic is a warning or error.
func (d Diagnostics) HasWarnings() bool {
	for _, diag := range d {
		if diag.Level != LevelInfo {
			return true
		}
	}
	return false
}

// Codes returns the diagnostic codes in order.
func (d Diagnostics) Codes() []string {
	out := make([]string, 0, len(d))
	for _, diag := range d {
		out = append(out, diag.Code)
	}
	return out
}
