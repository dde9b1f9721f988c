package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Ang3l-dev/Ang3l-Dash/pkg/contracts/domain"
)

// Sheet is one worksheet of a fixture workbook. The first row of Rows is
// written at A1, usually the header.
type Sheet struct {
	Name string
	Rows [][]any
}

// Workbook builds an xlsx file in memory. The first sheet is the active one.
func Workbook(t testing.TB, sheets ...Sheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("new sheet %s: %v", sheet.Name, err)
		}
		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			values := row
			if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
				t.Fatalf("write row %d of %s: %v", r+1, sheet.Name, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// Row is shorthand for a fixture row.
func Row(values ...any) []any { return values }

// ExportLine renders a pipe-bordered WIP export line. Fields default to
// "<col>" placeholders; set overrides by column index.
func ExportLine(overrides map[int]string) string {
	fields := make([]string, domain.NumColumns)
	for i := range fields {
		fields[i] = fmt.Sprintf("c%d", i)
		if v, ok := overrides[i]; ok {
			fields[i] = v
		}
	}
	return "|" + strings.Join(fields, "|") + "|"
}

// WipLine is ExportLine with the fields the workflows read.
func WipLine(wbs, material, value string) string {
	return ExportLine(map[int]string{
		domain.ColCodiceWBS:         wbs,
		domain.ColMateriale:         material,
		domain.ColValoreLavorazione: value,
	})
}

// ExportFile assembles an export with the usual separator and header
// framing around lines.
func ExportFile(lines ...string) []byte {
	sep := strings.Repeat("-", 80)
	header := "|" + strings.Join(domain.WipColumns[:], "|") + "|"
	out := append([]string{sep, header, sep}, lines...)
	out = append(out, sep)
	return []byte(strings.Join(out, "\r\n"))
}
