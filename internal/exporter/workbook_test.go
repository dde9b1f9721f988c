package exporter

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/history"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/tabular"
	"github.com/Ang3l-dev/Ang3l-Dash/pkg/contracts/domain"
)

func openRows(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func sheetNames(t *testing.T, data []byte) []string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	return f.GetSheetList()
}

func TestWriteUnified_RoundTrip(t *testing.T) {
	var first, second domain.WipRecord
	for i := range first {
		first[i] = "a"
		second[i] = "b"
	}
	first[domain.ColCodiceWBS] = "W1"
	first[domain.ColValoreLavorazione] = "1.234,56"
	second[domain.ColMateriale] = "Quantità"

	var buf bytes.Buffer
	require.NoError(t, WriteUnified(&buf, []domain.WipRecord{first, second}))

	assert.Equal(t, []string{SheetWIP}, sheetNames(t, buf.Bytes()))

	table, err := tabular.ReadWorkbookBytes("WIP.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, domain.WipColumns[:], table.Columns)

	records, err := tabular.UnifiedRecords(table, domain.ColumnCodiceWBS, domain.ColumnValoreLavorazione)
	require.NoError(t, err)
	assert.Equal(t, []domain.WipRecord{first, second}, records)
}

func TestWriteUnified_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteUnified(&buf, nil))

	rows := openRows(t, buf.Bytes(), SheetWIP)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.WipColumns[:], rows[0])
}

func TestWriteMissingReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMissingReport(&buf, domain.MissingKeys{"W3", "W9"}, nil))

	assert.Equal(t, []string{SheetMissingWBE, SheetMissingMaterials}, sheetNames(t, buf.Bytes()))
	assert.Equal(t, [][]string{{SheetMissingWBE}, {"W3"}, {"W9"}}, openRows(t, buf.Bytes(), SheetMissingWBE))
	assert.Equal(t, [][]string{{NoMissingMaterial}}, openRows(t, buf.Bytes(), SheetMissingMaterials))
}

func TestWriteMissingReport_AllFound(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMissingReport(&buf, domain.MissingKeys{}, domain.MissingKeys{}))

	assert.Equal(t, [][]string{{NoMissingWBE}}, openRows(t, buf.Bytes(), SheetMissingWBE))
	assert.Equal(t, [][]string{{NoMissingMaterial}}, openRows(t, buf.Bytes(), SheetMissingMaterials))
}

func TestWriteHistory_AreaRoundTrip(t *testing.T) {
	jan4, jan5 := domain.NewDay(2024, 1, 4), domain.NewDay(2024, 1, 5)
	out := history.Outcome{
		Mode: history.ModeArea,
		Series: domain.HistorySeries{
			{Area: "North", Date: jan4, Value: decimal.RequireFromString("90")},
			{Area: "North", Date: jan5, Value: decimal.RequireFromString("150.5")},
		},
	}
	detail := []domain.DetailRow{{WBS: "W1", Value: decimal.RequireFromString("150.5"), Date: jan5, Area: "North"}}

	var buf bytes.Buffer
	require.NoError(t, WriteHistory(&buf, out, detail))

	assert.Equal(t, []string{SheetHistory, SheetDetail}, sheetNames(t, buf.Bytes()))

	// The written workbook is a valid history input for the next run.
	table, err := tabular.ReadWorkbookBytes("storico_dati.xlsx", buf.Bytes())
	require.NoError(t, err)
	series, diags, err := history.Normalize(table)
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, series, 2)
	assert.Equal(t, "2024-01-05", series[1].Date.String())
	assert.True(t, decimal.RequireFromString("150.5").Equal(series[1].Value))

	display := openRows(t, buf.Bytes(), SheetHistory)
	assert.Equal(t, []string{"North", "2024-01-04", "90"}, display[1])

	audit := openRows(t, buf.Bytes(), SheetDetail)
	assert.Equal(t, history.FlatColumns, audit[0])
	assert.Equal(t, "W1", audit[1][0])
}

func TestWriteHistory_FlatWithoutDetail(t *testing.T) {
	jan5 := domain.NewDay(2024, 1, 5)
	out := history.Outcome{
		Mode: history.ModeFlat,
		Flat: []domain.DetailRow{{WBS: "W1", Value: decimal.NewFromInt(7), Date: jan5, Area: ""}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHistory(&buf, out, nil))

	assert.Equal(t, []string{SheetHistory}, sheetNames(t, buf.Bytes()))
	table, err := tabular.ReadWorkbookBytes("storico_dati.xlsx", buf.Bytes())
	require.NoError(t, err)
	rows, _, err := history.NormalizeFlat(table)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "W1", rows[0].WBS)
	assert.True(t, rows[0].Date.Equal(jan5))
}
