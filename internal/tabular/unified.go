package tabular

import (
	"github.com/Ang3l-dev/Ang3l-Dash/pkg/contracts/domain"
)

// UnifiedRecords reads WIP records back from a unified workbook. Columns
// are matched by name; those of the fixed schema the sheet lacks are left
// blank. required lists the columns that must be present.
func UnifiedRecords(t *Table, required ...string) ([]domain.WipRecord, error) {
	if _, err := t.Require(required...); err != nil {
		return nil, err
	}

	positions := make([]int, domain.NumColumns)
	for i, name := range domain.WipColumns {
		positions[i] = t.Index(name)
	}

	records := make([]domain.WipRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		var rec domain.WipRecord
		for i, col := range positions {
			rec[i] = Cell(row, col)
		}
		records = append(records, rec)
	}
	return records, nil
}
