package intake

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/model"
	"github.com/MarcosNahuel/aps-preliquidacion-app/pkg/errors"
)

// Get returns a submission the actor may see.
func (s *Service) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Submission, error) {
	sub, err := s.repo.GetSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(sub.SchoolID) {
		return nil, errors.ErrForbidden
	}
	return sub, nil
}

// List returns submissions newest first. School users only see their own school.
func (s *Service) List(ctx context.Context, actor model.Actor, req model.ListRequest) ([]model.Submission, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	filter := model.SubmissionFilter{
		Period:      req.Period,
		Status:      model.SubmissionStatus(req.Status),
		PayrollType: req.PayrollType,
		Limit:       req.Limit,
	}
	if req.SchoolID != "" {
		id, err := uuid.Parse(req.SchoolID)
		if err != nil {
			return nil, errors.ValidationError{Field: "school_id", Value: req.SchoolID, Message: "school_id must be a valid UUID"}
		}
		filter.SchoolID = &id
	}

	switch {
	case actor.IsAuditor():
	case actor.Role == model.RoleSchool && actor.SchoolID != nil:
		if filter.SchoolID != nil && *filter.SchoolID != *actor.SchoolID {
			return nil, errors.ErrForbidden
		}
		filter.SchoolID = actor.SchoolID
	default:
		return nil, errors.ErrForbidden
	}

	return s.repo.ListSubmissions(ctx, filter)
}

// Lines returns the payroll lines of a submission the actor may see.
func (s *Service) Lines(ctx context.Context, actor model.Actor, id uuid.UUID) ([]model.PayrollLine, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.repo.GetPayrollLines(ctx, id)
}

// Close moves a CARGADA submission to CERRADA. At most one MENSUAL submission
// per school and period may be closed.
func (s *Service) Close(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Submission, error) {
	sub, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != model.SubmissionLoaded {
		return nil, fmt.Errorf("%w: only %s submissions can be closed, this one is %s",
			errors.ErrInvalidTransition, model.SubmissionLoaded, sub.Status)
	}

	if sub.PayrollType == model.PayrollMonthly {
		exists, err := s.repo.HasClosedSubmission(ctx, sub.SchoolID, sub.Period, model.PayrollMonthly, sub.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, errors.ErrDuplicateClosed
		}
	}

	now := s.now()
	sub.Status = model.SubmissionClosed
	sub.ClosedAt = &now
	sub.UpdatedAt = now
	if err := s.repo.UpdateSubmission(ctx, sub); err != nil {
		return nil, err
	}

	s.log.Info().Str("submission_id", sub.ID.String()).Str("user_id", actor.UserID.String()).Msg("Submission closed")
	return sub, nil
}

// Reject lets an auditor turn down a CARGADA submission with a reason.
func (s *Service) Reject(ctx context.Context, actor model.Actor, id uuid.UUID, req model.StatusRequest) (*model.Submission, error) {
	if !actor.IsAuditor() {
		return nil, errors.ErrForbidden
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	sub, err := s.repo.GetSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != model.SubmissionLoaded {
		return nil, fmt.Errorf("%w: only %s submissions can be rejected, this one is %s",
			errors.ErrInvalidTransition, model.SubmissionLoaded, sub.Status)
	}

	reason := strings.TrimSpace(req.Reason)
	sub.Status = model.SubmissionRejected
	sub.RejectReason = &reason
	sub.UpdatedAt = s.now()
	if err := s.repo.UpdateSubmission(ctx, sub); err != nil {
		return nil, err
	}

	s.log.Info().Str("submission_id", sub.ID.String()).Str("user_id", actor.UserID.String()).Msg("Submission rejected by auditor")
	return sub, nil
}

// Delete removes a CARGADA submission, its lines and its stored workbooks.
func (s *Service) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	sub, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if sub.Status != model.SubmissionLoaded {
		return fmt.Errorf("%w: only %s submissions can be deleted, this one is %s",
			errors.ErrInvalidTransition, model.SubmissionLoaded, sub.Status)
	}

	if err := s.repo.DeleteSubmission(ctx, id); err != nil {
		return err
	}
	for _, key := range []*string{sub.OriginalKey, sub.ErrorReportKey} {
		if key != nil {
			s.discard(ctx, *key)
		}
	}
	return nil
}

// Response renders an outcome for the upload endpoints, trimming row errors to
// the configured preview size.
func (s *Service) Response(o *Outcome) model.UploadResponse {
	sub := o.Submission
	resp := model.UploadResponse{
		SubmissionID: &sub.ID,
		Status:       string(sub.Status),
		ErrorKind:    sub.ErrorKind,
		TotalRows:    sub.TotalRows,
	}

	switch o.Stage {
	case model.StageStructuralRejected:
		resp.Message = o.Structure.Message
		resp.Details = o.Structure.Details
	case model.StageDataRejected:
		v := o.Validation
		resp.RowsWithErrors = v.RowsWithErrors
		resp.Message = fmt.Sprintf("The file has %d rows with errors out of %d rows.", v.RowsWithErrors, v.TotalRows)
		resp.Errors = v.Errors
		if s.errorPreview > 0 && len(v.Errors) > s.errorPreview {
			resp.Errors = v.Errors[:s.errorPreview]
			resp.HasMoreErrors = true
		}
	case model.StageReceived:
		resp.Success = true
		resp.Message = "File received. It will be validated shortly."
	default:
		resp.Success = true
		resp.TotalCost = sub.TotalCost
		resp.Message = fmt.Sprintf("File loaded successfully. %d rows processed.", sub.TotalRows)
	}
	return resp
}
