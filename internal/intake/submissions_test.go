package intake

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/model"
	"github.com/MarcosNahuel/aps-preliquidacion-app/pkg/errors"
)

func TestCloseSubmission(t *testing.T) {
	ctx := context.Background()

	t.Run("loaded submission closes", func(t *testing.T) {
		f := newFixture(t)
		school := uuid.New()
		sub := loaded(t, f, school)

		closed, err := f.svc.Close(ctx, schoolUser(school), sub.ID)
		if err != nil {
			t.Fatalf("Close: %v", err)
		}
		if closed.Status != model.SubmissionClosed || closed.ClosedAt == nil {
			t.Fatalf("unexpected submission %+v", closed)
		}
		stored, _ := f.repo.GetSubmission(ctx, sub.ID)
		if stored.Status != model.SubmissionClosed {
			t.Fatalf("close not persisted")
		}
	})

	t.Run("only one closed monthly per school and period", func(t *testing.T) {
		f := newFixture(t)
		school := uuid.New()
		first, second := loaded(t, f, school), loaded(t, f, school)

		if _, err := f.svc.Close(ctx, auditor(), first.ID); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if _, err := f.svc.Close(ctx, auditor(), second.ID); !stderrors.Is(err, errors.ErrDuplicateClosed) {
			t.Fatalf("expected ErrDuplicateClosed, got %v", err)
		}

		other := loaded(t, f, uuid.New())
		if _, err := f.svc.Close(ctx, auditor(), other.ID); err != nil {
			t.Fatalf("another school must close independently: %v", err)
		}
	})

	t.Run("non monthly payrolls may close twice", func(t *testing.T) {
		f := newFixture(t)
		school := uuid.New()
		for i := 0; i < 2; i++ {
			up := upload(auditor(), school, "aguinaldo.xlsx", template(t, f.layout))
			up.Request.PayrollType = model.PayrollBonusFirstHalf
			out, err := f.svc.Submit(ctx, up)
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if _, err := f.svc.Close(ctx, auditor(), out.Submission.ID); err != nil {
				t.Fatalf("Close %d: %v", i, err)
			}
		}
	})

	t.Run("only loaded submissions close", func(t *testing.T) {
		f := newFixture(t)
		sub := loaded(t, f, uuid.New())
		if _, err := f.svc.Close(ctx, auditor(), sub.ID); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if _, err := f.svc.Close(ctx, auditor(), sub.ID); !stderrors.Is(err, errors.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("school users close only their own", func(t *testing.T) {
		f := newFixture(t)
		sub := loaded(t, f, uuid.New())
		if _, err := f.svc.Close(ctx, schoolUser(uuid.New()), sub.ID); !stderrors.Is(err, errors.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("unknown submission", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.svc.Close(ctx, auditor(), uuid.New()); !stderrors.Is(err, errors.ErrSubmissionNotFound) {
			t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
		}
	})
}

func TestRejectSubmission(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	school := uuid.New()
	sub := loaded(t, f, school)

	if _, err := f.svc.Reject(ctx, schoolUser(school), sub.ID, model.StatusRequest{Reason: "x"}); !stderrors.Is(err, errors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	var verr errors.ValidationError
	if _, err := f.svc.Reject(ctx, auditor(), sub.ID, model.StatusRequest{Reason: "   "}); !stderrors.As(err, &verr) || verr.Field != "reason" {
		t.Fatalf("expected a validation error on reason, got %v", err)
	}

	rejected, err := f.svc.Reject(ctx, auditor(), sub.ID, model.StatusRequest{Reason: " Montos inconsistentes "})
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != model.SubmissionRejected || *rejected.RejectReason != "Montos inconsistentes" {
		t.Fatalf("unexpected submission %+v", rejected)
	}

	if _, err := f.svc.Reject(ctx, auditor(), sub.ID, model.StatusRequest{Reason: "again"}); !stderrors.Is(err, errors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestDeleteSubmission(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	school := uuid.New()
	sub := loaded(t, f, school)

	if err := f.svc.Delete(ctx, schoolUser(school), sub.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.repo.GetSubmission(ctx, sub.ID); !stderrors.Is(err, errors.ErrSubmissionNotFound) {
		t.Fatalf("submission still present: %v", err)
	}
	if ok, _ := f.store.Exists(ctx, *sub.OriginalKey); ok {
		t.Fatalf("original workbook still stored")
	}

	closed := loaded(t, f, school)
	if _, err := f.svc.Close(ctx, auditor(), closed.ID); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := f.svc.Delete(ctx, auditor(), closed.ID); !stderrors.Is(err, errors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestListAndLines(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mine, theirs := uuid.New(), uuid.New()
	sub := loaded(t, f, mine)
	loaded(t, f, theirs)

	all, err := f.svc.List(ctx, auditor(), model.ListRequest{})
	if err != nil || len(all) != 2 {
		t.Fatalf("auditor sees %d submissions (%v)", len(all), err)
	}

	own, err := f.svc.List(ctx, schoolUser(mine), model.ListRequest{})
	if err != nil || len(own) != 1 || own[0].ID != sub.ID {
		t.Fatalf("school user sees %+v (%v)", own, err)
	}

	if _, err := f.svc.List(ctx, schoolUser(mine), model.ListRequest{SchoolID: theirs.String()}); !stderrors.Is(err, errors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	var verr errors.ValidationError
	if _, err := f.svc.List(ctx, auditor(), model.ListRequest{Period: "2025/03"}); !stderrors.As(err, &verr) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	if _, err := f.svc.List(ctx, auditor(), model.ListRequest{Status: "BORRADOR"}); !stderrors.As(err, &verr) {
		t.Fatalf("expected a validation error, got %v", err)
	}

	lines, err := f.svc.Lines(ctx, schoolUser(mine), sub.ID)
	if err != nil || len(lines) != templateRows {
		t.Fatalf("Lines: %d, %v", len(lines), err)
	}
	if _, err := f.svc.Lines(ctx, schoolUser(theirs), sub.ID); !stderrors.Is(err, errors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestDownloads(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	school := uuid.New()
	sub := loaded(t, f, school)

	t.Run("template", func(t *testing.T) {
		file, err := f.svc.Template()
		if err != nil || len(file.Data) == 0 || file.Name != "plantilla_libro-primario_v2.xlsx" {
			t.Fatalf("Template: %+v, %v", file, err)
		}
	})

	t.Run("original is auditor only", func(t *testing.T) {
		if _, err := f.svc.Original(ctx, schoolUser(school), sub.ID); !stderrors.Is(err, errors.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		file, err := f.svc.Original(ctx, auditor(), sub.ID)
		if err != nil || file.Name != "original_2025-03.xlsx" || len(file.Data) == 0 {
			t.Fatalf("Original: %v", err)
		}
	})

	t.Run("no error workbook for a loaded submission", func(t *testing.T) {
		if _, err := f.svc.ErrorReport(ctx, auditor(), sub.ID); !stderrors.Is(err, errors.ErrFileNotFound) {
			t.Fatalf("expected ErrFileNotFound, got %v", err)
		}
	})

	t.Run("report", func(t *testing.T) {
		file, err := f.svc.Report(ctx, schoolUser(school), sub.ID)
		if err != nil {
			t.Fatalf("Report: %v", err)
		}
		rows := reportRows(t, file.Data, "Liquidacion 2025-03")
		if len(rows) != templateRows+2 || rows[len(rows)-1][0] != "TOTAL" {
			t.Fatalf("unexpected report rows %v", rows)
		}
	})

	t.Run("consolidated needs closed submissions", func(t *testing.T) {
		if _, err := f.svc.Consolidated(ctx, auditor(), "2025-03"); !stderrors.Is(err, errors.ErrSubmissionNotFound) {
			t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
		}
		if _, err := f.svc.Close(ctx, auditor(), sub.ID); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if _, err := f.svc.Consolidated(ctx, schoolUser(school), "2025-03"); !stderrors.Is(err, errors.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		var verr errors.ValidationError
		if _, err := f.svc.Consolidated(ctx, auditor(), "marzo"); !stderrors.As(err, &verr) {
			t.Fatalf("expected a validation error, got %v", err)
		}

		file, err := f.svc.Consolidated(ctx, auditor(), "2025-03")
		if err != nil {
			t.Fatalf("Consolidated: %v", err)
		}
		if rows := reportRows(t, file.Data, "Consolidado 2025-03"); len(rows) != templateRows+2 {
			t.Fatalf("unexpected consolidated rows %d", len(rows))
		}
	})
}

func reportRows(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer wb.Close()

	rows, err := wb.GetRows(sheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	return rows
}
