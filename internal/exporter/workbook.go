package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/history"
	"github.com/Ang3l-dev/Ang3l-Dash/pkg/contracts/domain"
)

// Sheet names and placeholders of the generated workbooks.
const (
	SheetWIP              = "WIP"
	SheetMissingWBE       = "WBE mancanti"
	SheetMissingMaterials = "Matricole mancanti"
	SheetHistory          = "Storico"
	SheetDetail           = "Dettaglio"

	NoMissingWBE      = "Nessuna WBE mancante"
	NoMissingMaterial = "Nessuna Matricola mancante"
)

// WriteUnified writes the consolidated records as one sheet with the fixed
// 24 columns, in record order.
func WriteUnified(w io.Writer, records []domain.WipRecord) error {
	f, err := newWorkbook(SheetWIP)
	if err != nil {
		return err
	}
	defer f.Close()

	err = streamSheet(f, SheetWIP, domain.WipColumns[:], len(records), func(i int) []any {
		return stringCells(records[i][:])
	})
	if err != nil {
		return err
	}
	return save(f, w)
}

// WriteMissingReport writes one sheet per lookup. A sheet lists the sorted
// missing keys under a header, or holds a single placeholder row when
// nothing is missing.
func WriteMissingReport(w io.Writer, missingWBE, missingMaterials domain.MissingKeys) error {
	f, err := newWorkbook(SheetMissingWBE)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.NewSheet(SheetMissingMaterials); err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", SheetMissingMaterials, err)
	}

	if err := writeMissingSheet(f, SheetMissingWBE, missingWBE, NoMissingWBE); err != nil {
		return err
	}
	if err := writeMissingSheet(f, SheetMissingMaterials, missingMaterials, NoMissingMaterial); err != nil {
		return err
	}
	return save(f, w)
}

func writeMissingSheet(f *excelize.File, sheet string, keys domain.MissingKeys, placeholder string) error {
	if len(keys) == 0 {
		return streamSheet(f, sheet, nil, 1, func(int) []any { return []any{placeholder} })
	}
	return streamSheet(f, sheet, []string{sheet}, len(keys), func(i int) []any { return []any{keys[i]} })
}

// WriteHistory writes the history of out in the layout of its mode. When
// detail is non-empty it is added as an audit sheet.
func WriteHistory(w io.Writer, out history.Outcome, detail []domain.DetailRow) error {
	f, err := newWorkbook(SheetHistory)
	if err != nil {
		return err
	}
	defer f.Close()

	dateStyle, err := newDateStyle(f)
	if err != nil {
		return err
	}

	if out.Mode == history.ModeFlat {
		err = writeDetailSheet(f, SheetHistory, out.Flat, dateStyle)
	} else {
		header := []string{domain.ColumnArea, domain.ColumnDataAggiornamento, domain.ColumnValore}
		err = streamSheet(f, SheetHistory, header, len(out.Series), func(i int) []any {
			row := out.Series[i]
			return []any{
				row.Area,
				excelize.Cell{StyleID: dateStyle, Value: row.Date.Time()},
				cellNumber(row.Value),
			}
		})
	}
	if err != nil {
		return err
	}

	if len(detail) > 0 {
		if _, err := f.NewSheet(SheetDetail); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", SheetDetail, err)
		}
		if err := writeDetailSheet(f, SheetDetail, detail, dateStyle); err != nil {
			return err
		}
	}
	return save(f, w)
}

func writeDetailSheet(f *excelize.File, sheet string, rows []domain.DetailRow, dateStyle int) error {
	return streamSheet(f, sheet, history.FlatColumns, len(rows), func(i int) []any {
		row := rows[i]
		return []any{
			row.WBS,
			cellNumber(row.Value),
			excelize.Cell{StyleID: dateStyle, Value: row.Date.Time()},
			row.Area,
		}
	})
}

// newWorkbook creates a workbook whose only sheet is named first.
func newWorkbook(first string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), first); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet %s: %w", first, err)
	}
	return f, nil
}

func newDateStyle(f *excelize.File) (int, error) {
	layout := dateNumFmt
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &layout})
	if err != nil {
		return 0, fmt.Errorf("failed to create date style: %w", err)
	}
	return style, nil
}

// streamSheet writes an optional header and n rows produced by row.
func streamSheet(f *excelize.File, sheet string, header []string, n int, row func(i int) []any) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open sheet %s: %w", sheet, err)
	}

	next := 1
	if header != nil {
		if err := sw.SetRow("A1", stringCells(header)); err != nil {
			return fmt.Errorf("failed to write header of %s: %w", sheet, err)
		}
		next++
	}
	for i := 0; i < n; i++ {
		cell, err := excelize.CoordinatesToCellName(1, next+i)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row(i)); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet %s: %w", sheet, err)
	}
	return nil
}

func save(f *excelize.File, w io.Writer) error {
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func stringCells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
