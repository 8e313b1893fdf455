package intake

import (
	"bytes"
	"context"
	stderrors "errors"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/config"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/db"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/excel"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/model"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/schema"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/storage"
	"github.com/MarcosNahuel/aps-preliquidacion-app/pkg/errors"
)

const templateRows = 6

type stubQueue struct {
	jobs []model.IngestionJob
	err  error
}

func (q *stubQueue) EnqueueIngestionJob(_ context.Context, job model.IngestionJob) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type fixture struct {
	svc    *Service
	repo   *db.MemoryRepository
	store  *storage.MemoryStorage
	queue  *stubQueue
	layout *schema.Schema
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg, err := config.Parse([]byte("storage:\n  driver: memory\n"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	layout, err := cfg.Schema.Layout()
	if err != nil {
		t.Fatalf("layout: %v", err)
	}

	f := &fixture{
		repo:   db.NewMemoryRepository(),
		store:  storage.NewMemoryStorage(),
		queue:  &stubQueue{},
		layout: layout,
	}
	f.svc = NewService(cfg, layout, f.repo, f.store, f.queue)
	return f
}

func template(t *testing.T, s *schema.Schema) []byte {
	t.Helper()
	data, err := excel.GenerateTemplate(s)
	if err != nil {
		t.Fatalf("GenerateTemplate: %v", err)
	}
	return data
}

// withCell overwrites the field cell of worksheet row in a workbook.
func withCell(t *testing.T, data []byte, s *schema.Schema, field schema.Field, row int, value any) []byte {
	t.Helper()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	col, ok := s.Position(field)
	if !ok {
		t.Fatalf("layout has no %s column", field)
	}
	cell, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		t.Fatalf("cell name: %v", err)
	}
	if err := f.SetCellValue(s.ExpectedSheetName(), cell, value); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	return buf.Bytes()
}

func auditor() model.Actor {
	return model.Actor{UserID: uuid.New(), Role: model.RoleAuditor}
}

func schoolUser(school uuid.UUID) model.Actor {
	return model.Actor{UserID: uuid.New(), Role: model.RoleSchool, SchoolID: &school}
}

func upload(actor model.Actor, school uuid.UUID, name string, data []byte) Upload {
	return Upload{
		Request: model.UploadRequest{
			SchoolID:    school,
			Period:      "2025-03",
			PayrollType: model.PayrollMonthly,
			FileName:    name,
			Size:        int64(len(data)),
		},
		Data:     data,
		Actor:    actor,
		SourceIP: "10.0.0.7",
	}
}

func loaded(t *testing.T, f *fixture, school uuid.UUID) *model.Submission {
	t.Helper()
	out, err := f.svc.Submit(context.Background(), upload(auditor(), school, "marzo.xlsx", template(t, f.layout)))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.Submission.Status != model.SubmissionLoaded {
		t.Fatalf("expected CARGADA, got %+v", out.Submission)
	}
	return out.Submission
}

func TestSubmitLoadsValidWorkbook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	school := uuid.New()

	out, err := f.svc.Submit(ctx, upload(auditor(), school, "marzo.xlsx", template(t, f.layout)))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	sub := out.Submission
	if out.Stage != model.StagePersisted || sub.Status != model.SubmissionLoaded || sub.ErrorKind != nil {
		t.Fatalf("unexpected outcome stage=%s submission=%+v", out.Stage, sub)
	}
	if sub.TotalRows != templateRows || sub.SchemaVersion != f.layout.Version() || *sub.SourceIP != "10.0.0.7" {
		t.Fatalf("unexpected submission %+v", sub)
	}

	lines, err := f.repo.GetPayrollLines(ctx, sub.ID)
	if err != nil || len(lines) != templateRows {
		t.Fatalf("expected %d lines, got %d (%v)", templateRows, len(lines), err)
	}
	var cost float64
	for i, l := range lines {
		cost += l.Cost()
		if l.Row != i+2 || l.SchoolID != school || l.TeacherKey == nil {
			t.Fatalf("unexpected line %d: row=%d school=%s key=%v", i, l.Row, l.SchoolID, l.TeacherKey)
		}
	}
	if cost <= 0 || math.Abs(cost-sub.TotalCost) > 0.001 {
		t.Fatalf("total cost %v, lines sum to %v", sub.TotalCost, cost)
	}

	if sub.OriginalKey == nil || !strings.HasPrefix(*sub.OriginalKey, "originales/") {
		t.Fatalf("unexpected original key %v", sub.OriginalKey)
	}
	if ok, _ := f.store.Exists(ctx, *sub.OriginalKey); !ok {
		t.Fatalf("original workbook not stored")
	}
	if got := f.store.ContentType(*sub.OriginalKey); got != excel.ContentType {
		t.Fatalf("content type %q", got)
	}

	resp := f.svc.Response(out)
	if !resp.Success || resp.TotalCost != sub.TotalCost || resp.TotalRows != templateRows {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestSubmitStructuralRejection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	wb := excelize.NewFile()
	_ = wb.SetCellValue("Sheet1", "A1", "Nombre")
	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := f.svc.Submit(ctx, upload(auditor(), uuid.New(), "otro.xlsx", buf.Bytes()))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	sub := out.Submission
	if out.Stage != model.StageStructuralRejected || sub.Status != model.SubmissionRejected {
		t.Fatalf("unexpected outcome %s %+v", out.Stage, sub)
	}
	if *sub.ErrorKind != model.ErrorStructural || *sub.RejectReason != out.Structure.Message {
		t.Fatalf("unexpected rejection %v %v", *sub.ErrorKind, *sub.RejectReason)
	}
	if sub.OriginalKey != nil || sub.ErrorReportKey != nil {
		t.Fatalf("structural rejections store no files")
	}

	stored, err := f.repo.GetSubmission(ctx, sub.ID)
	if err != nil || stored.Status != model.SubmissionRejected {
		t.Fatalf("rejection not recorded: %+v, %v", stored, err)
	}

	resp := f.svc.Response(out)
	if resp.Success || len(resp.Details) != 1 || resp.Details[0] != "Sheet1" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestSubmitRejectsWrongExtension(t *testing.T) {
	f := newFixture(t)

	out, err := f.svc.Submit(context.Background(), upload(auditor(), uuid.New(), "marzo.xls", template(t, f.layout)))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.Stage != model.StageStructuralRejected || *out.Submission.ErrorKind != model.ErrorStructural {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if !strings.Contains(*out.Submission.RejectReason, "marzo.xls") {
		t.Fatalf("reason %q does not name the file", *out.Submission.RejectReason)
	}
}

func TestSubmitDataRejection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	data := withCell(t, template(t, f.layout), f.layout, schema.FieldRegistryNumber, 3, "ABCD")
	out, err := f.svc.Submit(ctx, upload(auditor(), uuid.New(), "marzo.xlsx", data))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	sub := out.Submission
	if out.Stage != model.StageDataRejected || *sub.ErrorKind != model.ErrorData {
		t.Fatalf("unexpected outcome %s %+v", out.Stage, sub)
	}
	if sub.TotalRows != templateRows || sub.RowsWithErrors != 1 {
		t.Fatalf("unexpected counts %d/%d", sub.RowsWithErrors, sub.TotalRows)
	}
	if sub.ErrorReportKey == nil || !strings.HasPrefix(*sub.ErrorReportKey, "errores/") {
		t.Fatalf("error workbook not recorded: %v", sub.ErrorReportKey)
	}
	if lines, _ := f.repo.GetPayrollLines(ctx, sub.ID); len(lines) != 0 {
		t.Fatalf("rejected submission must not have lines")
	}

	resp := f.svc.Response(out)
	if resp.Success || len(resp.Errors) != 1 || resp.Errors[0].Row != 3 || resp.HasMoreErrors {
		t.Fatalf("unexpected response %+v", resp)
	}

	report, err := f.svc.ErrorReport(ctx, auditor(), sub.ID)
	if err != nil {
		t.Fatalf("ErrorReport: %v", err)
	}
	wb, err := excelize.OpenReader(bytes.NewReader(report.Data))
	if err != nil {
		t.Fatalf("error workbook unreadable: %v", err)
	}
	defer wb.Close()
	if idx, _ := wb.GetSheetIndex(excel.SummarySheetName); idx < 0 {
		t.Fatalf("error workbook has no summary sheet")
	}
}

func TestResponseTrimsErrorPreview(t *testing.T) {
	f := newFixture(t)
	f.svc.errorPreview = 2

	data := template(t, f.layout)
	for row := 2; row <= 5; row++ {
		data = withCell(t, data, f.layout, schema.FieldRegistryNumber, row, "ABCD")
	}
	out, err := f.svc.Submit(context.Background(), upload(auditor(), uuid.New(), "marzo.xlsx", data))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	resp := f.svc.Response(out)
	if len(resp.Errors) != 2 || !resp.HasMoreErrors || resp.RowsWithErrors != 4 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestSubmitRemovesSubmissionWhenLinesFail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.repo.FailLineInserts = stderrors.New("deadlock")

	_, err := f.svc.Submit(ctx, upload(auditor(), uuid.New(), "marzo.xlsx", template(t, f.layout)))
	if err == nil {
		t.Fatalf("expected an error")
	}

	subs, _ := f.repo.ListSubmissions(ctx, model.SubmissionFilter{})
	if len(subs) != 0 {
		t.Fatalf("submission left behind: %+v", subs)
	}
}

func TestSubmitRequestChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	data := template(t, f.layout)

	t.Run("school users upload for their own school", func(t *testing.T) {
		own := uuid.New()
		out, err := f.svc.Submit(ctx, upload(schoolUser(own), uuid.New(), "marzo.xlsx", data))
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if out.Submission.SchoolID != own {
			t.Fatalf("expected school %s, got %s", own, out.Submission.SchoolID)
		}
	})

	t.Run("school user without school", func(t *testing.T) {
		actor := model.Actor{UserID: uuid.New(), Role: model.RoleSchool}
		if _, err := f.svc.Submit(ctx, upload(actor, uuid.New(), "marzo.xlsx", data)); !stderrors.Is(err, errors.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		actor := model.Actor{UserID: uuid.New(), Role: "ADMIN"}
		if _, err := f.svc.Submit(ctx, upload(actor, uuid.New(), "marzo.xlsx", data)); !stderrors.Is(err, errors.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	tests := []struct {
		name  string
		edit  func(*Upload)
		field string
	}{
		{"missing school", func(u *Upload) { u.Request.SchoolID = uuid.Nil }, "school_id"},
		{"bad period", func(u *Upload) { u.Request.Period = "03-2025" }, "period"},
		{"month out of range", func(u *Upload) { u.Request.Period = "2025-13" }, "period"},
		{"unknown payroll type", func(u *Upload) { u.Request.PayrollType = "SEMANAL" }, "payroll_type"},
		{"blank file name", func(u *Upload) { u.Request.FileName = "  " }, "file_name"},
		{"empty file", func(u *Upload) { u.Request.Size = 0 }, "size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := upload(auditor(), uuid.New(), "marzo.xlsx", data)
			tt.edit(&up)

			_, err := f.svc.Submit(ctx, up)
			var verr errors.ValidationError
			if !stderrors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("expected validation error on %s, got %v", tt.field, err)
			}
			if verr.Message == "" {
				t.Fatalf("validation error has no message")
			}
		})
	}

	t.Run("too large", func(t *testing.T) {
		f.svc.maxBytes = 10
		defer func() { f.svc.maxBytes = 10 << 20 }()
		if _, err := f.svc.Submit(ctx, upload(auditor(), uuid.New(), "marzo.xlsx", data)); !stderrors.Is(err, errors.ErrFileTooLarge) {
			t.Fatalf("expected ErrFileTooLarge, got %v", err)
		}
	})
}

func TestAsyncIntake(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.SubmitAsync(ctx, upload(auditor(), uuid.New(), "marzo.xlsx", template(t, f.layout)))
	if err != nil {
		t.Fatalf("SubmitAsync: %v", err)
	}
	sub := out.Submission
	if sub.Status != model.SubmissionPending || len(f.queue.jobs) != 1 {
		t.Fatalf("expected one queued PENDIENTE submission, got %+v, %d jobs", sub, len(f.queue.jobs))
	}
	if resp := f.svc.Response(out); !resp.Success || resp.Status != string(model.SubmissionPending) {
		t.Fatalf("unexpected response %+v", resp)
	}

	job := f.queue.jobs[0]
	if job.SubmissionID != sub.ID || job.StorageKey != *sub.OriginalKey {
		t.Fatalf("unexpected job %+v", job)
	}

	if err := f.svc.Process(ctx, job); err != nil {
		t.Fatalf("Process: %v", err)
	}
	done, _ := f.repo.GetSubmission(ctx, sub.ID)
	if done.Status != model.SubmissionLoaded || done.TotalRows != templateRows || done.TotalCost <= 0 {
		t.Fatalf("unexpected processed submission %+v", done)
	}

	// redelivery
	if err := f.svc.Process(ctx, job); err != nil {
		t.Fatalf("Process again: %v", err)
	}
	if lines, _ := f.repo.GetPayrollLines(ctx, sub.ID); len(lines) != templateRows {
		t.Fatalf("redelivery duplicated lines: %d", len(lines))
	}
}

func TestAsyncIntakeRejectsBadWorkbook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	data := withCell(t, template(t, f.layout), f.layout, schema.FieldRegistryNumber, 2, "")
	out, err := f.svc.SubmitAsync(ctx, upload(auditor(), uuid.New(), "marzo.xlsx", data))
	if err != nil {
		t.Fatalf("SubmitAsync: %v", err)
	}
	if err := f.svc.Process(ctx, f.queue.jobs[0]); err != nil {
		t.Fatalf("Process: %v", err)
	}

	done, _ := f.repo.GetSubmission(ctx, out.Submission.ID)
	if done.Status != model.SubmissionRejected || *done.ErrorKind != model.ErrorData || done.ErrorReportKey == nil {
		t.Fatalf("unexpected processed submission %+v", done)
	}
}

func TestAsyncIntakeFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("no queue", func(t *testing.T) {
		f := newFixture(t)
		f.svc.queue = nil
		if _, err := f.svc.SubmitAsync(ctx, upload(auditor(), uuid.New(), "marzo.xlsx", template(t, f.layout))); !stderrors.Is(err, errors.ErrQueueUnavailable) {
			t.Fatalf("expected ErrQueueUnavailable, got %v", err)
		}
	})

	t.Run("enqueue fails", func(t *testing.T) {
		f := newFixture(t)
		f.queue.err = stderrors.New("connection refused")
		if _, err := f.svc.SubmitAsync(ctx, upload(auditor(), uuid.New(), "marzo.xlsx", template(t, f.layout))); err == nil {
			t.Fatalf("expected an error")
		}
		if subs, _ := f.repo.ListSubmissions(ctx, model.SubmissionFilter{}); len(subs) != 0 {
			t.Fatalf("unqueued submission left behind")
		}
	})

	t.Run("line insert fails", func(t *testing.T) {
		f := newFixture(t)
		out, err := f.svc.SubmitAsync(ctx, upload(auditor(), uuid.New(), "marzo.xlsx", template(t, f.layout)))
		if err != nil {
			t.Fatalf("SubmitAsync: %v", err)
		}

		f.repo.FailLineInserts = stderrors.New("deadlock")
		err = f.svc.Process(ctx, f.queue.jobs[0])
		if !errors.IsRetryable(err) {
			t.Fatalf("expected a retryable error, got %v", err)
		}
		if sub, _ := f.repo.GetSubmission(ctx, out.Submission.ID); sub.Status != model.SubmissionPending {
			t.Fatalf("expected the submission to stay pending, got %s", sub.Status)
		}

		// A replayed job finishes the submission once the store recovers.
		f.repo.FailLineInserts = nil
		if err := f.svc.Process(ctx, f.queue.jobs[0]); err != nil {
			t.Fatalf("replayed Process: %v", err)
		}
		sub, _ := f.repo.GetSubmission(ctx, out.Submission.ID)
		if sub.Status != model.SubmissionLoaded {
			t.Fatalf("expected the replayed submission to load, got %s", sub.Status)
		}
		if lines, _ := f.repo.GetPayrollLines(ctx, sub.ID); len(lines) != templateRows {
			t.Fatalf("expected %d lines after replay, got %d", templateRows, len(lines))
		}
	})
}
