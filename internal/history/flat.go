package history

import (
	"fmt"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/dataprocessing"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/tabular"
	"github.com/Ang3l-dev/Ang3l-Dash/pkg/contracts/domain"
)

// FlatColumns is the column order of the flat, per-record history layout.
var FlatColumns = []string{
	domain.ColumnCodiceWBS,
	domain.ColumnValoreLavorazione,
	domain.ColumnDataAggiornamento,
	domain.ColumnArea,
}

// NormalizeFlat reads a flat history table. Codice WBS, Valore in
// lavorazione and DataAggiornamento are required; Area is optional.
func NormalizeFlat(t *tabular.Table) ([]domain.DetailRow, domain.Diagnostics, error) {
	var diags domain.Diagnostics
	if t == nil {
		return nil, diags, nil
	}
	idx, err := t.Require(domain.ColumnCodiceWBS, domain.ColumnValoreLavorazione, domain.ColumnDataAggiornamento)
	if err != nil {
		return nil, diags, err
	}
	areaCol := t.Index(domain.ColumnArea)

	rows := make([]domain.DetailRow, 0, len(t.Rows))
	badDates := 0
	for _, row := range t.Rows {
		day, ok := ParseDate(tabular.Cell(row, idx[2]))
		if !ok {
			badDates++
			continue
		}
		rows = append(rows, domain.DetailRow{
			WBS:   tabular.Cell(row, idx[0]),
			Value: dataprocessing.CoerceAmount(tabular.Cell(row, idx[1])),
			Date:  day,
			Area:  tabular.Cell(row, areaCol),
		})
	}
	if badDates > 0 {
		diags.Warn(domain.CodeUnparsableDates,
			fmt.Sprintf("%d rows dropped: date not recognised", badDates), t.Source)
	}
	return rows, diags, nil
}

// MergeFlat appends today's detail rows to existing after removing the
// rows existing already holds for today. It reports how many were replaced.
func MergeFlat(existing, batch []domain.DetailRow, today domain.Day) ([]domain.DetailRow, int) {
	out := make([]domain.DetailRow, 0, len(existing)+len(batch))
	replaced := 0
	for _, row := range existing {
		if row.Date.Equal(today) {
			replaced++
			continue
		}
		out = append(out, row)
	}
	return append(out, batch...), replaced
}
