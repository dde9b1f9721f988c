package tabular

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/shared/testutil"
	"github.com/Ang3l-dev/Ang3l-Dash/pkg/contracts/domain"
)

func TestReadWorkbook_FirstSheetAndRawValues(t *testing.T) {
	data := testutil.Workbook(t,
		testutil.Sheet{Name: "LUT", Rows: [][]any{
			testutil.Row(" WBE ", "Area"),
			testutil.Row("W1", "North"),
			testutil.Row(),
			testutil.Row("W2", 12.5),
		}},
		testutil.Sheet{Name: "Other", Rows: [][]any{testutil.Row("ignored")}},
	)

	table, err := ReadWorkbookBytes("lut.xlsx", data)
	require.NoError(t, err)

	assert.Equal(t, "LUT", table.Sheet)
	assert.Equal(t, []string{"WBE", "Area"}, table.Columns)
	require.Equal(t, 2, table.Len(), "blank rows are dropped")
	assert.Equal(t, "12.5", Cell(table.Rows[1], 1))
}

func TestReadWorkbookFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mat.xlsx")
	require.NoError(t, os.WriteFile(path, testutil.Workbook(t, testutil.Sheet{
		Name: "Sheet1",
		Rows: [][]any{testutil.Row("Materiale"), testutil.Row("M1")},
	}), 0644))

	table, err := ReadWorkbookFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, table.Source)
	assert.Equal(t, 1, table.Len())
}

func TestReadWorkbook_NotAWorkbook(t *testing.T) {
	_, err := ReadWorkbookBytes("bad.xlsx", []byte("definitely not zip"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.xlsx")
}

func TestTable_Find(t *testing.T) {
	table := NewTable("h", []string{"Codice", "  Data   Aggiornamento ", "TOTALE"}, nil)

	assert.Equal(t, 1, table.Find("dataaggiornamento", "data aggiornamento"))
	assert.Equal(t, 2, table.Find("valore", "totale"))
	assert.Equal(t, -1, table.Find("area"))
}

func TestTable_Require(t *testing.T) {
	table := NewTable("wbe.xlsx", []string{"WBE", "Descrizione"}, nil)

	_, err := table.Require("WBE", "Area", "Materiale")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaUnrecognized)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"Area", "Materiale"}, schemaErr.Missing)
	assert.Contains(t, err.Error(), "wbe.xlsx")
}

func TestLoadWBELookup(t *testing.T) {
	table := NewTable("wbe.xlsx", []string{"Area", "WBE"}, [][]string{
		{"North", " W1 "},
		{"South", "W2"},
		{"East", "W1"},
		{"West"},
		{"", "W3"},
	})

	lookup, diags, err := LoadWBELookup(table)
	require.NoError(t, err)

	assert.Equal(t, []string{"W1", "W2", "W3"}, lookup.Keys())
	area, ok := lookup.Attr("W1", domain.ColumnArea)
	require.True(t, ok)
	assert.Equal(t, "North", area, "first occurrence wins")
	area, _ = lookup.Attr("W3", domain.ColumnArea)
	assert.Empty(t, area)
	assert.Equal(t, []string{domain.CodeDuplicateLookups}, diags.Codes())
}

func TestLoadMaterialLookup_MissingColumn(t *testing.T) {
	_, _, err := LoadMaterialLookup(NewTable("mat.xlsx", []string{"Material"}, nil))
	assert.ErrorIs(t, err, ErrSchemaUnrecognized)
}

func TestUnifiedRecords(t *testing.T) {
	table := NewTable("WIP.xlsx",
		[]string{"Valore in lavorazione", "Codice WBS", "Extra"},
		[][]string{{"1.234,50", "W1", "x"}, {"", "W2"}},
	)

	records, err := UnifiedRecords(table, domain.ColumnCodiceWBS, domain.ColumnValoreLavorazione)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "W1", records[0].WBS())
	assert.Equal(t, "1.234,50", records[0].ValueInProcess())
	assert.Empty(t, records[0].Material())
	assert.Empty(t, records[1].ValueInProcess())

	_, err = UnifiedRecords(table, domain.ColumnMateriale)
	assert.ErrorIs(t, err, ErrSchemaUnrecognized)
}
