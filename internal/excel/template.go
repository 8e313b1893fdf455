package excel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/rules"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/schema"
)

const (
	InstructionsSheetName = "Instructions"

	colorRequired = "#991B1B"
	colorExample  = "#666666"
)

type sampleTeacher struct {
	school, registry, level string
	lastName, firstNames    string
	dni, cuilPrefix         string
	role, status            string
	hours                   float64
	base, remunerative, net float64
}

var sampleTeachers = []sampleTeacher{
	{"P-001", "001", "P", "SIMPSON", "HOMERO JAY", "20456789", "20", "INSPECTOR DE SEGURIDAD", "TITULAR", 40, 350000, 420000, 380000},
	{"P-001", "002", "P", "SIMPSON", "MARJORIE BOUVIER", "21567890", "27", "MAESTRA DE GRADO", "TITULAR", 18, 280000, 340000, 310000},
	{"P-001", "003", "P", "FLANDERS", "NEDWARD", "18234567", "20", "PROFESOR DE RELIGION", "SUPLENTE", 12, 180000, 220000, 195000},
	{"PS-102", "004", "PS", "SKINNER", "SEYMOUR ARMIN", "16789012", "20", "DIRECTOR", "TITULAR", 36, 450000, 580000, 520000},
	{"PS-102", "005", "PS", "KRABAPPEL", "EDNA", "19345678", "27", "PROFESORA DE LENGUA", "TITULAR", 24, 320000, 400000, 365000},
	{"PT-050", "006", "PT", "FRINK", "JOHN NERDELBAUM", "15678901", "20", "PROFESOR DE FISICA", "TITULAR", 20, 380000, 460000, 420000},
}

func (t sampleTeacher) fiscalID() string {
	first10 := t.cuilPrefix + t.dni
	d, _ := rules.CheckDigit(first10)
	return first10 + strconv.Itoa(d)
}

func (t sampleTeacher) values() map[schema.Field]any {
	deductions := t.remunerative - t.net
	return map[schema.Field]any{
		schema.FieldInstitutionCode:   t.school,
		schema.FieldEducationLevel:    t.level,
		schema.FieldRegistryNumber:    t.registry,
		schema.FieldFullName:          t.lastName + " " + t.firstNames,
		schema.FieldLastName:          t.lastName,
		schema.FieldFirstNames:        t.firstNames,
		schema.FieldIdentityNumber:    t.dni,
		schema.FieldFiscalID:          t.fiscalID(),
		schema.FieldEmploymentStatus:  t.status,
		schema.FieldRole:              t.role,
		schema.FieldHours:             t.hours,
		schema.FieldBaseSalary:        t.base,
		schema.FieldGrossSalary:       t.base,
		schema.FieldGrossTotal:        t.remunerative,
		schema.FieldTotalRemunerative: t.remunerative,
		schema.FieldTotalEarnings:     t.remunerative,
		schema.FieldTotalDeductions:   deductions,
		schema.FieldNetPay:            t.net,
	}
}

// GenerateTemplate builds a blank workbook for layout s: the header row with
// required columns highlighted, example rows and an instructions sheet.
func GenerateTemplate(s *schema.Schema) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := s.ExpectedSheetName()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	if err := writeTemplateHeader(f, sheet, s.Columns()); err != nil {
		return nil, err
	}

	exampleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Italic: true, Color: colorExample}})
	if err != nil {
		return nil, err
	}
	cols := s.Columns()
	for i, t := range sampleTeachers {
		values := t.values()
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = values[c.Field]
		}
		if err := f.SetSheetRow(sheet, cellName(1, i+2), &row); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cellName(1, i+2), cellName(len(cols), i+2), exampleStyle); err != nil {
			return nil, err
		}
	}

	if err := writeInstructions(f, s); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write template: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTemplateHeader(f *excelize.File, sheet string, cols []schema.Column) error {
	base := excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: colorWhite},
		Fill:      solidFill(colorHeader),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	}
	headerStyle, err := f.NewStyle(&base)
	if err != nil {
		return err
	}
	base.Fill = solidFill(colorRequired)
	requiredStyle, err := f.NewStyle(&base)
	if err != nil {
		return err
	}

	for i, c := range cols {
		cell := cellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, c.Name); err != nil {
			return err
		}
		style := headerStyle
		if c.Required {
			style = requiredStyle
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, name, name, float64(len(c.DisplayName())+5)); err != nil {
			return err
		}
	}
	return f.SetRowHeight(sheet, 1, 30)
}

func writeInstructions(f *excelize.File, s *schema.Schema) error {
	if _, err := f.NewSheet(InstructionsSheetName); err != nil {
		return err
	}

	lines := []string{
		"Instructions for completing the workbook",
		"",
		"IMPORTANT: this template is mandatory for payroll submissions.",
		"Delete the example rows before entering your data.",
		"",
		"REQUIRED COLUMNS (dark red header):",
	}
	for _, c := range s.Columns() {
		if c.Required {
			lines = append(lines, "- "+c.DisplayName())
		}
	}
	lines = append(lines,
		"",
		"DATA FORMAT:",
		"- Colegio: LEVEL-NUMBER institution code (e.g. P-001, PS-102)",
		"- Legajo: internal teacher number, 1 to 3 digits",
		"- CUIL: 11 digits, hyphens allowed (e.g. 20-30123456-3)",
		"- Amounts: plain numbers, no currency symbol or thousands separators",
		"",
		"VALID LEVELS:",
	)
	levels := make([]string, 0, len(schema.LevelNames))
	for code := range schema.LevelNames {
		levels = append(levels, code)
	}
	sort.Strings(levels)
	for _, code := range levels {
		lines = append(lines, fmt.Sprintf("- %s: %s", code, schema.LevelNames[code]))
	}
	lines = append(lines,
		"",
		"DO NOT MODIFY:",
		fmt.Sprintf("- the sheet name (%s)", s.ExpectedSheetName()),
		"- column names or their order",
		"- do not add extra columns",
		"",
		"If the file is rejected, fix the reported errors and upload it again.",
	)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	warning, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Color: colorErrorHeader}})
	if err != nil {
		return err
	}

	if err := f.SetColWidth(InstructionsSheetName, "A", "A", 100); err != nil {
		return err
	}
	for i, line := range lines {
		cell := cellName(1, i+1)
		if err := f.SetCellValue(InstructionsSheetName, cell, line); err != nil {
			return err
		}
		var style int
		switch {
		case strings.HasPrefix(line, "IMPORTANT"), strings.HasPrefix(line, "DO NOT MODIFY"):
			style = warning
		case i == 0, strings.HasSuffix(line, ":"):
			style = bold
		default:
			continue
		}
		if err := f.SetCellStyle(InstructionsSheetName, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}
