package excel

import (
	"github.com/xuri/excelize/v2"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/model"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/rules"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/schema"
)

// Validator runs the structural and data checks for one layout. It holds no
// per-call state and is safe for concurrent use.
type Validator struct {
	schema *schema.Schema
}

func NewValidator(s *schema.Schema) *Validator {
	return &Validator{schema: s}
}

// ValidateData applies the cell rules to every non-empty data row. Errors are
// returned in ascending row order, and in rules.Checked order within a row.
func (v *Validator) ValidateData(data []byte) (*model.ValidationResult, error) {
	var result *model.ValidationResult

	err := withWorkbook(data, func(f *excelize.File) error {
		_, rows, err := sheetRows(f, v.schema)
		if err != nil {
			return err
		}
		result = v.validateRows(rows)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type checkedColumn struct {
	index int
	name  string
	rule  rules.Rule
}

func (v *Validator) validateRows(rows [][]string) *model.ValidationResult {
	result := &model.ValidationResult{Errors: []model.RowError{}}
	if len(rows) == 0 {
		result.Valid = true
		return result
	}

	idx := headerIndex(v.schema, rows[0])
	var checks []checkedColumn
	for _, f := range rules.Checked {
		i, ok := idx[f]
		if !ok {
			continue
		}
		rule, _ := rules.ForField(f)
		col, _ := v.schema.Column(f)
		checks = append(checks, checkedColumn{index: i, name: col.DisplayName(), rule: rule})
	}

	for i, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		result.TotalRows++

		rowNum := i + 2
		failed := false
		for _, c := range checks {
			raw := cellAt(row, c.index)
			res := c.rule(raw)
			if res.Valid {
				continue
			}
			failed = true
			result.Errors = append(result.Errors, model.RowError{
				Row:     rowNum,
				Column:  c.name,
				Value:   raw,
				Message: res.Message,
			})
		}
		if failed {
			result.RowsWithErrors++
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}
