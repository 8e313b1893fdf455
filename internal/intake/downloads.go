package intake

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/excel"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/model"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/storage"
	"github.com/MarcosNahuel/aps-preliquidacion-app/pkg/errors"
)

// File is a workbook ready to be sent to a client.
type File struct {
	Name string
	Data []byte
}

// Template returns the blank workbook for the configured layout.
func (s *Service) Template() (*File, error) {
	data, err := excel.GenerateTemplate(s.layout)
	if err != nil {
		return nil, fmt.Errorf("generate template: %w", err)
	}
	name := strings.NewReplacer("/", "_", " ", "_").Replace(s.layout.Version())
	return &File{Name: "plantilla_" + name + ".xlsx", Data: data}, nil
}

// Original returns the uploaded workbook. Only auditors may download originals.
func (s *Service) Original(ctx context.Context, actor model.Actor, id uuid.UUID) (*File, error) {
	if !actor.IsAuditor() {
		return nil, errors.ErrForbidden
	}
	sub, err := s.repo.GetSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.OriginalKey == nil {
		return nil, errors.ErrFileNotFound
	}

	data, err := storage.ReadAll(ctx, s.storage, *sub.OriginalKey)
	if err != nil {
		return nil, err
	}
	return &File{Name: "original_" + sub.Period + ".xlsx", Data: data}, nil
}

// ErrorReport returns the annotated workbook of a data rejection.
func (s *Service) ErrorReport(ctx context.Context, actor model.Actor, id uuid.UUID) (*File, error) {
	sub, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if sub.ErrorReportKey == nil {
		return nil, errors.ErrFileNotFound
	}

	data, err := storage.ReadAll(ctx, s.storage, *sub.ErrorReportKey)
	if err != nil {
		return nil, err
	}
	return &File{Name: "errores_" + sub.FileName, Data: data}, nil
}

// Report renders the payroll lines of one submission.
func (s *Service) Report(ctx context.Context, actor model.Actor, id uuid.UUID) (*File, error) {
	sub, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.GetPayrollLines(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := excel.BuildReport("Liquidacion "+sub.Period, lines)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	return &File{Name: fmt.Sprintf("liquidacion_%s_%s.xlsx", sub.Period, sub.ID.String()[:8]), Data: data}, nil
}

// Consolidated renders every closed payroll line of period across schools.
func (s *Service) Consolidated(ctx context.Context, actor model.Actor, period string) (*File, error) {
	if !actor.IsAuditor() {
		return nil, errors.ErrForbidden
	}
	if !periodRegex.MatchString(period) {
		return nil, errors.ValidationError{Field: "period", Value: period, Message: "period must be a period in YYYY-MM format"}
	}

	lines, err := s.repo.GetClosedPayrollLines(ctx, period)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no closed submissions for %s", errors.ErrSubmissionNotFound, period)
	}

	data, err := excel.BuildReport("Consolidado "+period, lines)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	return &File{Name: "consolidado_" + period + ".xlsx", Data: data}, nil
}
