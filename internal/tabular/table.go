package tabular

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrSchemaUnrecognized is wrapped by every SchemaError.
var ErrSchemaUnrecognized = errors.New("unrecognized table schema")

// SchemaError names the columns a table lacks.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required column(s): %s", e.Source, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchemaUnrecognized }

// Table is one sheet: a header row and the data rows beneath it. Rows may
// be shorter than the header when trailing cells are empty.
type Table struct {
	Source  string
	Sheet   string
	Columns []string
	Rows    [][]string
}

// NewTable builds a table from a header and rows. Header names are trimmed.
func NewTable(source string, columns []string, rows [][]string) *Table {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = strings.TrimSpace(c)
	}
	return &Table{Source: source, Columns: cols, Rows: rows}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of the column named exactly name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Find returns the first column whose normalized name equals one of the
// candidates, trying candidates in order, or -1.
func (t *Table) Find(candidates ...string) int {
	normalized := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		normalized[i] = NormalizeColumnName(c)
	}
	for _, cand := range candidates {
		want := NormalizeColumnName(cand)
		for i, c := range normalized {
			if c == want {
				return i
			}
		}
	}
	return -1
}

// Cell returns the trimmed cell at col of row, or "" when out of range.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// Require returns the indexes of the named columns, matched exactly, or a
// SchemaError listing every absent one.
func (t *Table) Require(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	var missing []string
	for i, name := range names {
		idx[i] = t.Index(name)
		if idx[i] < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Source: t.Source, Missing: missing}
	}
	return idx, nil
}

var spaceRun = regexp.MustCompile(`\s+`)

// NormalizeColumnName lowercases name and collapses whitespace runs so that
// "Data  Aggiornamento\n" matches "data aggiornamento".
func NormalizeColumnName(name string) string {
	name = strings.TrimSpace(name)
	name = spaceRun.ReplaceAllString(name, " ")
	return strings.ToLower(name)
}
