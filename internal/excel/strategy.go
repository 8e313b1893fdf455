package excel

import (
	"fmt"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/model"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/schema"
)

// IngestionStrategy is the workbook side of one ingestion.
type IngestionStrategy interface {
	Run(data []byte) (*Ingestion, error)
}

// Ingestion records how far a workbook got through the pipeline. Stage is always
// terminal once Run returns without error.
type Ingestion struct {
	Stage       model.Stage
	Structure   model.StructureResult
	Validation  *model.ValidationResult
	Rows        []model.PayrollRow
	ErrorReport []byte
}

type ExcelStrategy struct {
	schema    *schema.Schema
	validator *Validator
	parser    *Parser
	annotator *Annotator
}

func NewExcelStrategy(s *schema.Schema) *ExcelStrategy {
	return &ExcelStrategy{
		schema:    s,
		validator: NewValidator(s),
		parser:    NewParser(s),
		annotator: NewAnnotator(s),
	}
}

func (s *ExcelStrategy) Schema() *schema.Schema {
	return s.schema
}

// Run checks structure, then data, then extracts. A data rejection carries the
// annotated workbook in ErrorReport. Errors are returned only for failures after
// the structural check passed, which leave the ingestion at StageReceived.
func (s *ExcelStrategy) Run(data []byte) (*Ingestion, error) {
	in := &Ingestion{Stage: model.StageReceived}

	in.Structure = s.validator.CheckStructure(data)
	if !in.Structure.Valid {
		in.Stage = model.StageStructuralRejected
		return in, nil
	}

	validation, err := s.validator.ValidateData(data)
	if err != nil {
		return in, fmt.Errorf("data validation: %w", err)
	}
	in.Validation = validation

	if !validation.Valid {
		report, err := s.annotator.Annotate(data, validation.Errors)
		if err != nil {
			return in, fmt.Errorf("error workbook: %w", err)
		}
		in.ErrorReport = report
		in.Stage = model.StageDataRejected
		return in, nil
	}

	rows, err := s.parser.Parse(data)
	if err != nil {
		return in, fmt.Errorf("extraction: %w", err)
	}
	in.Rows = rows
	in.Stage = model.StageExtracted
	return in, nil
}
