package tabular

import (
	"fmt"

	"github.com/Ang3l-dev/Ang3l-Dash/pkg/contracts/domain"
)

// LoadWBELookup builds the WBE→Area table. The sheet must expose the
// columns WBE and Area.
func LoadWBELookup(t *Table) (*domain.LookupTable, domain.Diagnostics, error) {
	idx, err := t.Require(domain.ColumnWBE, domain.ColumnArea)
	if err != nil {
		return nil, nil, err
	}
	return buildLookup(t, "wbe", idx[0], map[string]int{domain.ColumnArea: idx[1]})
}

// LoadMaterialLookup builds the valid-material set from the Materiale
// column.
func LoadMaterialLookup(t *Table) (*domain.LookupTable, domain.Diagnostics, error) {
	idx, err := t.Require(domain.ColumnMateriale)
	if err != nil {
		return nil, nil, err
	}
	return buildLookup(t, "material", idx[0], nil)
}

func buildLookup(t *Table, name string, keyCol int, attrCols map[string]int) (*domain.LookupTable, domain.Diagnostics, error) {
	table := domain.NewLookupTable(name)
	duplicates := 0
	for _, row := range t.Rows {
		key := Cell(row, keyCol)
		if key == "" {
			continue
		}
		attrs := make(map[string]string, len(attrCols))
		for attr, col := range attrCols {
			attrs[attr] = Cell(row, col)
		}
		if !table.Add(key, attrs) {
			duplicates++
		}
	}

	var diags domain.Diagnostics
	if duplicates > 0 {
		diags.Info(domain.CodeDuplicateLookups,
			fmt.Sprintf("%d duplicate keys ignored, first occurrence kept", duplicates), t.Source)
	}
	return table, diags, nil
}
