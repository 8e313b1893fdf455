// Package intake runs payroll workbooks through validation and extraction and
// records the resulting submission. It owns the submission lifecycle:
// PENDIENTE and CARGADA submissions come from uploads, CERRADA and RECHAZADA
// from close and reject.
package intake

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/config"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/db"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/excel"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/logger"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/model"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/schema"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/storage"
	"github.com/MarcosNahuel/aps-preliquidacion-app/pkg/errors"
)

const msgProcessingFailed = "The workbook could not be processed. Please check the file and upload it again."

// JobQueue hands pending submissions to the ingestion worker.
type JobQueue interface {
	EnqueueIngestionJob(ctx context.Context, job model.IngestionJob) error
}

type Service struct {
	repo     db.Repository
	storage  storage.Storage
	queue    JobQueue
	layout   *schema.Schema
	strategy excel.IngestionStrategy

	originalPrefix string
	errorsPrefix   string
	maxBytes       int64
	errorPreview   int

	now func() time.Time
	log zerolog.Logger
}

// NewService wires the intake flow. queue may be nil, which disables SubmitAsync.
func NewService(cfg *config.Config, layout *schema.Schema, repo db.Repository, store storage.Storage, queue JobQueue) *Service {
	return &Service{
		repo:           repo,
		storage:        store,
		queue:          queue,
		layout:         layout,
		strategy:       excel.NewExcelStrategy(layout),
		originalPrefix: cfg.Storage.OriginalPrefix,
		errorsPrefix:   cfg.Storage.ErrorsPrefix,
		maxBytes:       cfg.Upload.MaxBytes,
		errorPreview:   cfg.Upload.ErrorPreview,
		now:            func() time.Time { return time.Now().UTC() },
		log:            logger.Component("intake"),
	}
}

// Upload is one workbook received from an actor.
type Upload struct {
	Request  model.UploadRequest
	Data     []byte
	Actor    model.Actor
	SourceIP string
}

// Outcome is the result of a synchronous upload.
type Outcome struct {
	Submission *model.Submission
	Stage      model.Stage
	Structure  model.StructureResult
	Validation *model.ValidationResult
}

func (s *Service) Layout() *schema.Schema {
	return s.layout
}

// Submit validates, extracts and persists an upload in one call. Rejected
// workbooks still produce a RECHAZADA submission and a nil error; errors are
// reserved for bad requests and infrastructure failures.
func (s *Service) Submit(ctx context.Context, up Upload) (*Outcome, error) {
	sub, err := s.admit(ctx, &up)
	if err != nil {
		return nil, err
	}
	log := s.log.With().Str("submission_id", sub.ID.String()).Str("school_id", sub.SchoolID.String()).Logger()

	if err := excel.CheckExtension(up.Request.FileName); err != nil {
		return s.rejectExtension(ctx, sub, up.Request.FileName)
	}

	in, err := s.strategy.Run(up.Data)
	if err != nil {
		log.Error().Err(err).Msg("Workbook pipeline failed")
		return nil, err
	}
	out := &Outcome{Submission: sub, Stage: in.Stage, Structure: in.Structure, Validation: in.Validation}

	switch in.Stage {
	case model.StageStructuralRejected, model.StageDataRejected:
		s.applyRejection(ctx, sub, in)
		if err := s.repo.CreateSubmission(ctx, sub); err != nil {
			return nil, fmt.Errorf("record rejected submission: %w", err)
		}
		log.Info().Str("stage", string(in.Stage)).Msg("Workbook rejected")
		return out, nil
	}

	key := s.objectKey(s.originalPrefix, sub.ID, up.Request.FileName)
	if err := s.storage.Upload(ctx, key, bytes.NewReader(up.Data), excel.ContentType); err != nil {
		return nil, fmt.Errorf("store original workbook: %w", err)
	}
	sub.OriginalKey = &key

	s.applyExtraction(sub, in.Rows)
	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		s.discard(ctx, key)
		return nil, fmt.Errorf("create submission: %w", err)
	}

	if err := s.repo.InsertPayrollLines(ctx, lines(sub, in.Rows)); err != nil {
		log.Error().Err(err).Msg("Failed to insert payroll lines, removing submission")
		if delErr := s.repo.DeleteSubmission(ctx, sub.ID); delErr != nil {
			log.Error().Err(delErr).Msg("Failed to remove submission after line insert failure")
		}
		s.discard(ctx, key)
		return nil, fmt.Errorf("insert payroll lines: %w", err)
	}

	out.Stage = model.StagePersisted
	log.Info().Int("rows", sub.TotalRows).Float64("total_cost", sub.TotalCost).Msg("Submission loaded")
	return out, nil
}

// SubmitAsync stores the upload as a PENDIENTE submission and queues it for the
// ingestion worker. Files with a wrong extension are rejected immediately.
func (s *Service) SubmitAsync(ctx context.Context, up Upload) (*Outcome, error) {
	if s.queue == nil {
		return nil, errors.ErrQueueUnavailable
	}

	sub, err := s.admit(ctx, &up)
	if err != nil {
		return nil, err
	}
	if err := excel.CheckExtension(up.Request.FileName); err != nil {
		return s.rejectExtension(ctx, sub, up.Request.FileName)
	}

	key := s.objectKey(s.originalPrefix, sub.ID, up.Request.FileName)
	if err := s.storage.Upload(ctx, key, bytes.NewReader(up.Data), excel.ContentType); err != nil {
		return nil, fmt.Errorf("store original workbook: %w", err)
	}
	sub.OriginalKey = &key

	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		s.discard(ctx, key)
		return nil, fmt.Errorf("create submission: %w", err)
	}

	job := model.IngestionJob{SubmissionID: sub.ID, StorageKey: key, FileName: sub.FileName}
	if err := s.queue.EnqueueIngestionJob(ctx, job); err != nil {
		if delErr := s.repo.DeleteSubmission(ctx, sub.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("submission_id", sub.ID.String()).Msg("Failed to remove unqueued submission")
		}
		s.discard(ctx, key)
		return nil, fmt.Errorf("queue submission: %w", err)
	}

	s.log.Info().Str("submission_id", sub.ID.String()).Msg("Submission queued")
	return &Outcome{Submission: sub, Stage: model.StageReceived}, nil
}

// Process finalizes a PENDIENTE submission queued by SubmitAsync. Jobs for
// submissions that already left PENDIENTE are ignored so redelivery is safe.
func (s *Service) Process(ctx context.Context, job model.IngestionJob) error {
	log := s.log.With().Str("submission_id", job.SubmissionID.String()).Logger()

	sub, err := s.repo.GetSubmission(ctx, job.SubmissionID)
	if err != nil {
		return err
	}
	if sub.Status != model.SubmissionPending {
		log.Warn().Str("status", string(sub.Status)).Msg("Submission already processed, skipping")
		return nil
	}

	data, err := storage.ReadAll(ctx, s.storage, job.StorageKey)
	if err != nil {
		return fmt.Errorf("download original workbook: %w", err)
	}

	in, err := s.strategy.Run(data)
	if err != nil {
		sub.Reject(model.ErrorStructural, msgProcessingFailed)
		sub.UpdatedAt = s.now()
		if upErr := s.repo.UpdateSubmission(ctx, sub); upErr != nil {
			return upErr
		}
		log.Error().Err(err).Msg("Workbook pipeline failed")
		return nil
	}

	if in.Stage != model.StageExtracted {
		s.applyRejection(ctx, sub, in)
		log.Info().Str("stage", string(in.Stage)).Msg("Workbook rejected")
		return s.repo.UpdateSubmission(ctx, sub)
	}

	s.applyExtraction(sub, in.Rows)
	if err := s.repo.UpdateSubmission(ctx, sub); err != nil {
		return err
	}
	if err := s.repo.InsertPayrollLines(ctx, lines(sub, in.Rows)); err != nil {
		sub.Status = model.SubmissionPending
		if upErr := s.repo.UpdateSubmission(ctx, sub); upErr != nil {
			log.Error().Err(upErr).Msg("Failed to return submission to pending")
		}
		return errors.NewRetryableError(err, "insert payroll lines")
	}

	log.Info().Int("rows", sub.TotalRows).Float64("total_cost", sub.TotalCost).Msg("Submission loaded")
	return nil
}

// admit validates the request, resolves the school and builds the submission
// record. School users always upload for their own school.
func (s *Service) admit(ctx context.Context, up *Upload) (*model.Submission, error) {
	if up.Actor.Role == model.RoleSchool {
		if up.Actor.SchoolID == nil {
			return nil, errors.ErrForbidden
		}
		up.Request.SchoolID = *up.Actor.SchoolID
	} else if !up.Actor.IsAuditor() {
		return nil, errors.ErrForbidden
	}

	up.Request.FileName = path.Base(strings.ReplaceAll(strings.TrimSpace(up.Request.FileName), `\`, "/"))
	if err := validate(up.Request); err != nil {
		return nil, err
	}
	if s.maxBytes > 0 && (up.Request.Size > s.maxBytes || int64(len(up.Data)) > s.maxBytes) {
		return nil, errors.ErrFileTooLarge
	}

	now := s.now()
	sub := &model.Submission{
		ID:            uuid.New(),
		SchoolID:      up.Request.SchoolID,
		Period:        up.Request.Period,
		PayrollType:   up.Request.PayrollType,
		Status:        model.SubmissionPending,
		SchemaVersion: s.layout.Version(),
		FileName:      up.Request.FileName,
		UserID:        up.Actor.UserID,
		UploadedAt:    now,
		UpdatedAt:     now,
	}
	if up.SourceIP != "" {
		ip := up.SourceIP
		sub.SourceIP = &ip
	}
	return sub, nil
}

func (s *Service) rejectExtension(ctx context.Context, sub *model.Submission, name string) (*Outcome, error) {
	msg := fmt.Sprintf("Only Excel workbooks (.xlsx) are accepted. Received %q.", name)
	sub.Reject(model.ErrorStructural, msg)
	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("record rejected submission: %w", err)
	}
	return &Outcome{
		Submission: sub,
		Stage:      model.StageStructuralRejected,
		Structure:  model.StructureResult{Message: msg},
	}, nil
}

// applyRejection records a structural or data rejection on sub. The annotated
// workbook is stored best-effort; a failed upload leaves ErrorReportKey empty.
func (s *Service) applyRejection(ctx context.Context, sub *model.Submission, in *excel.Ingestion) {
	sub.UpdatedAt = s.now()
	if in.Stage == model.StageStructuralRejected {
		sub.Reject(model.ErrorStructural, in.Structure.Message)
		return
	}

	v := in.Validation
	sub.TotalRows = v.TotalRows
	sub.RowsWithErrors = v.RowsWithErrors
	sub.Reject(model.ErrorData, fmt.Sprintf("Found %d rows with errors out of %d rows.", v.RowsWithErrors, v.TotalRows))

	key := s.objectKey(s.errorsPrefix, sub.ID, sub.FileName)
	if err := s.storage.Upload(ctx, key, bytes.NewReader(in.ErrorReport), excel.ContentType); err != nil {
		s.log.Warn().Err(err).Str("submission_id", sub.ID.String()).Msg("Failed to store error workbook")
		return
	}
	sub.ErrorReportKey = &key
}

func (s *Service) applyExtraction(sub *model.Submission, rows []model.PayrollRow) {
	var total float64
	for i := range rows {
		total += rows[i].Cost()
	}
	sub.Status = model.SubmissionLoaded
	sub.TotalRows = len(rows)
	sub.TotalCost = total
	sub.UpdatedAt = s.now()
}

func lines(sub *model.Submission, rows []model.PayrollRow) []model.PayrollLine {
	out := make([]model.PayrollLine, len(rows))
	for i, r := range rows {
		out[i] = model.NewPayrollLine(sub.ID, sub.SchoolID, r)
	}
	return out
}

func (s *Service) objectKey(prefix string, id uuid.UUID, fileName string) string {
	return path.Join(prefix, id.String()+"_"+fileName)
}

func (s *Service) discard(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to delete stored workbook")
	}
}
