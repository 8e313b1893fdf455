package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/model"
)

const currencyFormat = "$#,##0.00"

type reportColumn struct {
	title  string
	width  float64
	amount bool
	value  func(l *model.PayrollLine) any
}

func text(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func amount(n *float64) any {
	if n == nil {
		return nil
	}
	return *n
}

func fullName(l *model.PayrollLine) any {
	if l.FullName != nil {
		return *l.FullName
	}
	parts := make([]string, 0, 2)
	if l.LastName != nil {
		parts = append(parts, *l.LastName)
	}
	if l.FirstNames != nil {
		parts = append(parts, *l.FirstNames)
	}
	if len(parts) == 0 {
		return nil
	}
	return strings.Join(parts, ", ")
}

var reportColumns = []reportColumn{
	{"Colegio", 12, false, func(l *model.PayrollLine) any { return text(l.InstitutionCode) }},
	{"Nivel", 8, false, func(l *model.PayrollLine) any { return text(l.EducationLevel) }},
	{"Legajo", 10, false, func(l *model.PayrollLine) any { return text(l.RegistryNumber) }},
	{"DNI", 12, false, func(l *model.PayrollLine) any { return text(l.IdentityNumber) }},
	{"CUIL", 15, false, func(l *model.PayrollLine) any { return text(l.FiscalID) }},
	{"Apellido y Nombres", 30, false, fullName},
	{"Cargo", 30, false, func(l *model.PayrollLine) any { return text(l.Role) }},
	{"Horas", 8, false, func(l *model.PayrollLine) any { return amount(l.Hours) }},
	{"Sueldo Basico", 15, true, func(l *model.PayrollLine) any { return amount(l.BaseSalary) }},
	{"Total Remunerativo", 18, true, func(l *model.PayrollLine) any { return amount(l.TotalRemunerative) }},
	{"Total de Haberes", 18, true, func(l *model.PayrollLine) any { return amount(l.TotalEarnings) }},
	{"Total Deducciones", 18, true, func(l *model.PayrollLine) any { return amount(l.TotalDeductions) }},
	{"Sueldo Neto", 15, true, func(l *model.PayrollLine) any { return amount(l.NetPay) }},
	{"Item Arraigo", 15, true, func(l *model.PayrollLine) any { return amount(l.ArraigoItem) }},
}

// BuildReport writes payroll lines to a single-sheet workbook with currency
// formatted amounts and a totals row. It serves both the per-submission download
// and the consolidated period report.
func BuildReport(sheet string, lines []model.PayrollLine) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: colorWhite},
		Fill: solidFill(colorHeader),
	})
	if err != nil {
		return nil, err
	}
	moneyFmt := currencyFormat
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return nil, err
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &moneyFmt})
	if err != nil {
		return nil, err
	}

	titles := make([]any, len(reportColumns))
	for i, c := range reportColumns {
		titles[i] = c.title
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, name, name, c.width); err != nil {
			return nil, err
		}
	}
	if err := f.SetSheetRow(sheet, "A1", &titles); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", cellName(len(reportColumns), 1), headerStyle); err != nil {
		return nil, err
	}

	totals := make([]float64, len(reportColumns))
	for i := range lines {
		rowNum := i + 2
		values := make([]any, len(reportColumns))
		for j, c := range reportColumns {
			values[j] = c.value(&lines[i])
			if n, ok := values[j].(float64); ok && c.amount {
				totals[j] += n
			}
		}
		if err := f.SetSheetRow(sheet, cellName(1, rowNum), &values); err != nil {
			return nil, err
		}
		for j, c := range reportColumns {
			if !c.amount || values[j] == nil {
				continue
			}
			cell := cellName(j+1, rowNum)
			if err := f.SetCellStyle(sheet, cell, cell, moneyStyle); err != nil {
				return nil, err
			}
		}
	}

	totalRow := len(lines) + 2
	if err := f.SetCellValue(sheet, cellName(1, totalRow), "TOTAL"); err != nil {
		return nil, err
	}
	for j, c := range reportColumns {
		if !c.amount {
			continue
		}
		cell := cellName(j+1, totalRow)
		if err := f.SetCellValue(sheet, cell, totals[j]); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, totalStyle); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return buf.Bytes(), nil
}
