package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/model"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/schema"
)

const (
	msgUnreadable     = "The file could not be read. Make sure it is a valid Excel (.xlsx) workbook."
	msgStructure      = "The workbook structure does not match the template."
	msgSheetNotFound  = "The workbook must contain a sheet named %q. Sheets found: %s."
	msgMissingColumn  = "Missing column: %q"
	msgUnexpectedCol  = "Unexpected column: %q"
	msgColumnOrder    = "Expected %q at position %d, found %q"
	msgEmptyHeaderRow = "The header row of sheet %q is empty."
)

// CheckStructure confirms the worksheet exists and its header row matches the layout:
// every expected column present, no unexpected column, then the exact order.
func (v *Validator) CheckStructure(data []byte) model.StructureResult {
	var result model.StructureResult

	err := withWorkbook(data, func(f *excelize.File) error {
		result = v.checkStructure(f)
		return nil
	})
	if err != nil {
		return model.StructureResult{Message: msgUnreadable}
	}
	return result
}

func (v *Validator) checkStructure(f *excelize.File) model.StructureResult {
	sheets := f.GetSheetList()
	sheet, ok := v.schema.FindSheet(sheets)
	if !ok {
		return model.StructureResult{
			Message: fmt.Sprintf(msgSheetNotFound, v.schema.ExpectedSheetName(), strings.Join(sheets, ", ")),
			Details: append([]string{}, sheets...),
		}
	}

	rows, err := f.GetRows(sheet, rawValues)
	if err != nil {
		return model.StructureResult{Message: msgUnreadable}
	}

	var header []string
	if len(rows) > 0 {
		header = make([]string, len(rows[0]))
		for i, h := range rows[0] {
			header[i] = strings.TrimSpace(h)
		}
	}
	if isEmptyRow(header) {
		return model.StructureResult{
			Message: msgStructure,
			Details: []string{fmt.Sprintf(msgEmptyHeaderRow, sheet)},
		}
	}

	details := v.checkMembership(header)
	if len(details) == 0 {
		details = v.checkOrder(header)
	}
	if len(details) > 0 {
		return model.StructureResult{Message: msgStructure, Details: details}
	}
	return model.StructureResult{Valid: true, Message: "The workbook structure is valid."}
}

// checkMembership compares header text with the canonical column names only.
// Variants and accent folding are for locating data, not for accepting a layout.
func (v *Validator) checkMembership(header []string) []string {
	cols := v.schema.Columns()
	expected := make(map[string]bool, len(cols))
	for _, col := range cols {
		expected[headerKey(col.Name)] = false
	}

	var unexpected []string
	for _, h := range header {
		if h == "" {
			continue
		}
		k := headerKey(h)
		if _, ok := expected[k]; !ok {
			unexpected = append(unexpected, fmt.Sprintf(msgUnexpectedCol, schema.NormalizeHeader(h)))
			continue
		}
		expected[k] = true
	}

	var details []string
	for _, col := range cols {
		if !expected[headerKey(col.Name)] {
			details = append(details, fmt.Sprintf(msgMissingColumn, col.DisplayName()))
		}
	}
	return append(details, unexpected...)
}

// checkOrder compares the expected positions one by one. It only runs once
// membership passed; cells past the last expected column are not compared.
func (v *Validator) checkOrder(header []string) []string {
	var details []string
	for i, col := range v.schema.Columns() {
		var got string
		if i < len(header) {
			got = schema.NormalizeHeader(header[i])
		}
		if strings.EqualFold(got, col.DisplayName()) {
			continue
		}
		details = append(details, fmt.Sprintf(msgColumnOrder, col.DisplayName(), i+1, got))
	}
	return details
}

// headerKey is the case-insensitive, single-line form of a header cell.
func headerKey(h string) string {
	return strings.ToLower(schema.NormalizeHeader(h))
}
