package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/MarcosNahuel/aps-preliquidacion-app/internal/model"
	"github.com/MarcosNahuel/aps-preliquidacion-app/pkg/errors"
)

type Repository interface {
	CreateSubmission(ctx context.Context, s *model.Submission) error
	UpdateSubmission(ctx context.Context, s *model.Submission) error
	GetSubmission(ctx context.Context, id uuid.UUID) (*model.Submission, error)
	ListSubmissions(ctx context.Context, filter model.SubmissionFilter) ([]model.Submission, error)
	DeleteSubmission(ctx context.Context, id uuid.UUID) error
	// HasClosedSubmission reports whether another closed submission exists for the
	// school, period and payroll type.
	HasClosedSubmission(ctx context.Context, schoolID uuid.UUID, period string, payrollType model.PayrollType, exclude uuid.UUID) (bool, error)

	// InsertPayrollLines stores every line or none of them.
	InsertPayrollLines(ctx context.Context, lines []model.PayrollLine) error
	GetPayrollLines(ctx context.Context, submissionID uuid.UUID) ([]model.PayrollLine, error)
	// GetClosedPayrollLines returns the lines of every closed submission for period.
	GetClosedPayrollLines(ctx context.Context, period string) ([]model.PayrollLine, error)
}

const insertBatchSize = 200

const submissionColumns = `id, id_colegio, periodo, tipo_liquidacion, estado, tipo_error, motivo_rechazo,
	total_filas, filas_con_error, costo_total_presentado, version_esquema, nombre_archivo, id_usuario,
	ip_origen, ruta_archivo_original, ruta_archivo_errores, fecha_subida, fecha_cierre, updated_at`

// lineColumns lists the db tags of model.PayrollLine in declaration order.
var lineColumns = dbColumns(reflect.TypeOf(model.PayrollLine{}))

func dbColumns(t reflect.Type) []string {
	var cols []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			cols = append(cols, dbColumns(f.Type)...)
			continue
		}
		if tag := f.Tag.Get("db"); tag != "" && tag != "-" {
			cols = append(cols, tag)
		}
	}
	return cols
}

type repository struct {
	db *sqlx.DB

	insertLine string
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{
		db: db,
		insertLine: fmt.Sprintf("INSERT INTO liquidaciones_detalle (%s) VALUES (:%s)",
			strings.Join(lineColumns, ", "), strings.Join(lineColumns, ", :")),
	}
}

func (r *repository) CreateSubmission(ctx context.Context, s *model.Submission) error {
	query := fmt.Sprintf(`INSERT INTO presentaciones (%s) VALUES (:id, :id_colegio, :periodo, :tipo_liquidacion,
		:estado, :tipo_error, :motivo_rechazo, :total_filas, :filas_con_error, :costo_total_presentado,
		:version_esquema, :nombre_archivo, :id_usuario, :ip_origen, :ruta_archivo_original,
		:ruta_archivo_errores, :fecha_subida, :fecha_cierre, :updated_at)`, submissionColumns)

	_, err := r.db.NamedExecContext(ctx, query, s)
	return err
}

func (r *repository) UpdateSubmission(ctx context.Context, s *model.Submission) error {
	query := `UPDATE presentaciones SET estado = :estado, tipo_error = :tipo_error, motivo_rechazo = :motivo_rechazo,
		total_filas = :total_filas, filas_con_error = :filas_con_error, costo_total_presentado = :costo_total_presentado,
		ruta_archivo_original = :ruta_archivo_original, ruta_archivo_errores = :ruta_archivo_errores,
		fecha_cierre = :fecha_cierre, updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, s)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.ErrSubmissionNotFound
	}
	return nil
}

func (r *repository) GetSubmission(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM presentaciones WHERE id = ?`

	var s model.Submission
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.ErrSubmissionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) ListSubmissions(ctx context.Context, filter model.SubmissionFilter) ([]model.Submission, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.SchoolID != nil {
		where = append(where, "id_colegio = ?")
		args = append(args, *filter.SchoolID)
	}
	if filter.Period != "" {
		where = append(where, "periodo = ?")
		args = append(args, filter.Period)
	}
	if filter.Status != "" {
		where = append(where, "estado = ?")
		args = append(args, filter.Status)
	}
	if filter.PayrollType != "" {
		where = append(where, "tipo_liquidacion = ?")
		args = append(args, filter.PayrollType)
	}

	query := `SELECT ` + submissionColumns + ` FROM presentaciones`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY fecha_subida DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	var out []model.Submission
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteSubmission removes the submission and any lines already stored for it.
func (r *repository) DeleteSubmission(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM liquidaciones_detalle WHERE id_presentacion = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM presentaciones WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *repository) HasClosedSubmission(ctx context.Context, schoolID uuid.UUID, period string, payrollType model.PayrollType, exclude uuid.UUID) (bool, error) {
	query := `SELECT COUNT(*) FROM presentaciones
		WHERE id_colegio = ? AND periodo = ? AND tipo_liquidacion = ? AND estado = ? AND id <> ?`

	var n int
	if err := r.db.GetContext(ctx, &n, query, schoolID, period, payrollType, model.SubmissionClosed, exclude); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repository) InsertPayrollLines(ctx context.Context, lines []model.PayrollLine) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for start := 0; start < len(lines); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(lines) {
			end = len(lines)
		}
		if _, err := tx.NamedExecContext(ctx, r.insertLine, lines[start:end]); err != nil {
			return fmt.Errorf("insert payroll lines %d-%d: %w", start, end, err)
		}
	}

	return tx.Commit()
}

func (r *repository) GetPayrollLines(ctx context.Context, submissionID uuid.UUID) ([]model.PayrollLine, error) {
	query := fmt.Sprintf(`SELECT %s FROM liquidaciones_detalle WHERE id_presentacion = ? ORDER BY fila_excel`,
		strings.Join(lineColumns, ", "))

	var out []model.PayrollLine
	if err := r.db.SelectContext(ctx, &out, query, submissionID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) GetClosedPayrollLines(ctx context.Context, period string) ([]model.PayrollLine, error) {
	cols := make([]string, len(lineColumns))
	for i, c := range lineColumns {
		cols[i] = "l." + c
	}
	query := fmt.Sprintf(`SELECT %s FROM liquidaciones_detalle l
		JOIN presentaciones p ON p.id = l.id_presentacion
		WHERE p.periodo = ? AND p.estado = ?
		ORDER BY l.colegio, l.legajo`, strings.Join(cols, ", "))

	var out []model.PayrollLine
	if err := r.db.SelectContext(ctx, &out, query, period, model.SubmissionClosed); err != nil {
		return nil, err
	}
	return out, nil
}
