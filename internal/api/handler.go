package api

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/config"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/excel"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/intake"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/logger"
	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/model"
	"github.com/MarcosNahuel/aps-preliquidacion-app/pkg/errors"
)

// multipartOverhead is allowed on top of upload.max_bytes for the other form fields.
const multipartOverhead = 1 << 20

type Handler struct {
	intake *intake.Service
	cfg    *config.Config
	log    zerolog.Logger
}

func NewHandler(svc *intake.Service, cfg *config.Config) *Handler {
	return &Handler{
		intake: svc,
		cfg:    cfg,
		log:    logger.Component("api"),
	}
}

type submitFunc func(ctx context.Context, up intake.Upload) (*intake.Outcome, error)

func (h *Handler) Upload(c *gin.Context) {
	h.upload(c, h.intake.Submit)
}

func (h *Handler) UploadAsync(c *gin.Context) {
	h.upload(c, h.intake.SubmitAsync)
}

func (h *Handler) upload(c *gin.Context, submit submitFunc) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Upload.MaxBytes+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			h.fail(c, errors.ErrFileTooLarge)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required data: file, period and payroll_type"})
		return
	}

	req := model.UploadRequest{
		Period:      c.PostForm("period"),
		PayrollType: model.PayrollType(c.PostForm("payroll_type")),
		FileName:    fh.Filename,
		Size:        fh.Size,
	}
	if raw := c.PostForm("school_id"); raw != "" {
		schoolID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid school ID", "field": "school_id"})
			return
		}
		req.SchoolID = schoolID
	}
	if fh.Size > h.cfg.Upload.MaxBytes {
		h.fail(c, errors.ErrFileTooLarge)
		return
	}

	file, err := fh.Open()
	if err != nil {
		h.fail(c, fmt.Errorf("open uploaded file: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.fail(c, fmt.Errorf("read uploaded file: %w", err))
		return
	}

	out, err := submit(c.Request.Context(), intake.Upload{
		Request:  req,
		Data:     data,
		Actor:    actorFrom(c),
		SourceIP: c.ClientIP(),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := h.intake.Response(out)
	switch {
	case !resp.Success:
		c.JSON(http.StatusBadRequest, resp)
	case out.Stage == model.StageReceived:
		c.JSON(http.StatusAccepted, resp)
	default:
		c.JSON(http.StatusOK, resp)
	}
}

func (h *Handler) ListSubmissions(c *gin.Context) {
	var req model.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	subs, err := h.intake.List(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	if subs == nil {
		subs = []model.Submission{}
	}
	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}

func (h *Handler) GetSubmission(c *gin.Context) {
	id, ok := h.submissionID(c)
	if !ok {
		return
	}

	sub, err := h.intake.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *Handler) GetLines(c *gin.Context) {
	id, ok := h.submissionID(c)
	if !ok {
		return
	}

	lines, err := h.intake.Lines(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if lines == nil {
		lines = []model.PayrollLine{}
	}
	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

func (h *Handler) CloseSubmission(c *gin.Context) {
	id, ok := h.submissionID(c)
	if !ok {
		return
	}

	sub, err := h.intake.Close(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "submission": sub})
}

func (h *Handler) RejectSubmission(c *gin.Context) {
	id, ok := h.submissionID(c)
	if !ok {
		return
	}

	var req model.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sub, err := h.intake.Reject(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "submission": sub})
}

func (h *Handler) DeleteSubmission(c *gin.Context) {
	id, ok := h.submissionID(c)
	if !ok {
		return
	}

	if err := h.intake.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) DownloadTemplate(c *gin.Context) {
	file, err := h.intake.Template()
	if err != nil {
		h.fail(c, err)
		return
	}
	sendWorkbook(c, file)
}

func (h *Handler) DownloadOriginal(c *gin.Context) {
	h.download(c, h.intake.Original)
}

func (h *Handler) DownloadErrors(c *gin.Context) {
	h.download(c, h.intake.ErrorReport)
}

func (h *Handler) DownloadReport(c *gin.Context) {
	h.download(c, h.intake.Report)
}

func (h *Handler) DownloadConsolidated(c *gin.Context) {
	file, err := h.intake.Consolidated(c.Request.Context(), actorFrom(c), c.Query("period"))
	if err != nil {
		h.fail(c, err)
		return
	}
	sendWorkbook(c, file)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"service":        h.cfg.App.Name,
		"version":        h.cfg.App.Version,
		"schema_version": h.intake.Layout().Version(),
	})
}

type downloadFunc func(ctx context.Context, actor model.Actor, id uuid.UUID) (*intake.File, error)

func (h *Handler) download(c *gin.Context, fetch downloadFunc) {
	id, ok := h.submissionID(c)
	if !ok {
		return
	}

	file, err := fetch(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	sendWorkbook(c, file)
}

func sendWorkbook(c *gin.Context, file *intake.File) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, excel.ContentType, file.Data)
}

func (h *Handler) submissionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return uuid.Nil, false
	}
	return id, true
}

// fail maps service errors to HTTP responses. Unexpected errors are logged and
// reported without detail.
func (h *Handler) fail(c *gin.Context, err error) {
	var verr errors.ValidationError
	switch {
	case stderrors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case stderrors.Is(err, errors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to access this submission"})
	case stderrors.Is(err, errors.ErrSubmissionNotFound), stderrors.Is(err, errors.ErrFileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case stderrors.Is(err, errors.ErrInvalidTransition), stderrors.Is(err, errors.ErrDuplicateClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case stderrors.Is(err, errors.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error(), "max_bytes": h.cfg.Upload.MaxBytes})
	case stderrors.Is(err, errors.ErrQueueUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
