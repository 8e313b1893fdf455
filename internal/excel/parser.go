package excel

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/model"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/rules"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/schema"
)

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// Parser extracts typed rows from a workbook that already passed validation.
type Parser struct {
	schema *schema.Schema
}

func NewParser(s *schema.Schema) *Parser {
	return &Parser{schema: s}
}

// Parse returns one PayrollRow per non-empty data row, in sheet order. Cells that
// cannot be read as their column's type are left nil.
func (p *Parser) Parse(data []byte) ([]model.PayrollRow, error) {
	var out []model.PayrollRow

	err := withWorkbook(data, func(f *excelize.File) error {
		_, rows, err := sheetRows(f, p.schema)
		if err != nil {
			return err
		}
		out = p.parseRows(rows)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Parser) parseRows(rows [][]string) []model.PayrollRow {
	out := make([]model.PayrollRow, 0, len(rows))
	if len(rows) < 2 {
		return out
	}

	idx := headerIndex(p.schema, rows[0])
	for i, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		out = append(out, p.parseRow(row, idx, i+2))
	}
	return out
}

func (p *Parser) parseRow(row []string, idx map[schema.Field]int, rowNum int) model.PayrollRow {
	r := model.PayrollRow{Row: rowNum}

	for field, i := range idx {
		raw := strings.TrimSpace(cellAt(row, i))
		if raw == "" {
			continue
		}

		typ, _ := p.schema.DataTypeOf(field)
		switch typ {
		case schema.TypeNumber:
			if slot, ok := r.NumberField(field); ok {
				*slot = parseNumber(raw)
			}
		case schema.TypeDate:
			if slot, ok := r.DateField(field); ok {
				*slot = parseDate(raw)
			}
		default:
			if slot, ok := r.TextField(field); ok {
				*slot = normalizeText(field, raw)
			}
		}
	}

	derive(&r)
	return r
}

func normalizeText(field schema.Field, raw string) *string {
	v := raw
	switch field {
	case schema.FieldRegistryNumber:
		if len(v) < 3 {
			v = strings.Repeat("0", 3-len(v)) + v
		}
	case schema.FieldIdentityNumber:
		v = rules.NormalizeIdentity(v)
	case schema.FieldFiscalID:
		v = rules.NormalizeFiscalID(v)
	case schema.FieldEducationLevel:
		v = strings.ToUpper(v)
	}
	if v == "" {
		return nil
	}
	return &v
}

// derive fills identity number and level for layouts without those columns:
// the identity number sits in digits 3 to 10 of the fiscal ID and the level is
// the institution code prefix.
func derive(r *model.PayrollRow) {
	if r.IdentityNumber == nil && r.FiscalID != nil && len(*r.FiscalID) == 11 {
		if dni := strings.TrimLeft((*r.FiscalID)[2:10], "0"); dni != "" {
			r.IdentityNumber = &dni
		}
	}

	if r.EducationLevel == nil && r.InstitutionCode != nil {
		prefix, _, found := strings.Cut(*r.InstitutionCode, "-")
		prefix = strings.ToUpper(prefix)
		if found {
			if _, ok := schema.LevelNames[prefix]; ok {
				r.EducationLevel = &prefix
			}
		}
	}
}

func parseNumber(raw string) *float64 {
	s := strings.ReplaceAll(raw, " ", "")
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	return &n
}

func parseDate(raw string) *time.Time {
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return nil
		}
		return &t
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
