// Package excel runs the workbook side of payroll intake: structural checks, cell
// validation, row extraction, annotated error workbooks, templates and reports.
package excel

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/schema"
	"github.com/MarcosNahuel/aps-preliquidacion-app/pkg/errors"
)

// ContentType is the MIME type of every workbook this package produces.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var rawValues = excelize.Options{RawCellValue: true}

// CheckExtension accepts only .xlsx file names. It runs before any parsing.
func CheckExtension(name string) error {
	if !strings.EqualFold(filepath.Ext(strings.TrimSpace(name)), ".xlsx") {
		return errors.ErrInvalidFileFormat
	}
	return nil
}

// withWorkbook opens data and guarantees the handle is closed on every path.
// Parser errors are replaced by ErrUnreadableWorkbook.
func withWorkbook(data []byte, fn func(f *excelize.File) error) error {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return errors.ErrUnreadableWorkbook
	}
	defer f.Close()

	return fn(f)
}

// sheetRows returns the raw cell text of the layout's worksheet.
func sheetRows(f *excelize.File, s *schema.Schema) (string, [][]string, error) {
	sheet, ok := s.FindSheet(f.GetSheetList())
	if !ok {
		return "", nil, errors.ErrSheetNotFound
	}

	rows, err := f.GetRows(sheet, rawValues)
	if err != nil {
		return "", nil, errors.ErrUnreadableWorkbook
	}
	return sheet, rows, nil
}

// headerIndex maps each recognised header cell to its column index.
func headerIndex(s *schema.Schema, header []string) map[schema.Field]int {
	idx := make(map[schema.Field]int, len(header))
	for i, h := range header {
		f, ok := s.ResolveField(h)
		if !ok {
			continue
		}
		if _, seen := idx[f]; !seen {
			idx[f] = i
		}
	}
	return idx
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// cellName is excelize.CoordinatesToCellName for coordinates known to be valid.
func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
