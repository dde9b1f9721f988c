package tabular

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook reads the first sheet of an xlsx workbook. The first row is
// the header.
func ReadWorkbook(source string, r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", source, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", source)
	}
	return readSheet(f, source, sheets[0])
}

// ReadWorkbookBytes is ReadWorkbook over an in-memory upload.
func ReadWorkbookBytes(source string, data []byte) (*Table, error) {
	return ReadWorkbook(source, bytes.NewReader(data))
}

// ReadWorkbookFile opens path and reads its first sheet.
func ReadWorkbookFile(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	return ReadWorkbook(path, file)
}

func readSheet(f *excelize.File, source, sheet string) (*Table, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s of %s: %w", sheet, source, err)
	}

	// Skip leading blank rows; the first non-blank row is the header.
	start := 0
	for start < len(rows) && isBlankRow(rows[start]) {
		start++
	}
	if start == len(rows) {
		t := NewTable(source, nil, nil)
		t.Sheet = sheet
		return t, nil
	}

	data := make([][]string, 0, len(rows)-start-1)
	for _, row := range rows[start+1:] {
		if isBlankRow(row) {
			continue
		}
		data = append(data, row)
	}

	t := NewTable(source, rows[start], data)
	t.Sheet = sheet
	return t, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
