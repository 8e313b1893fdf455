package model

import (
	"time"

	"github.com/google/uuid"
)

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "PENDIENTE"
	SubmissionLoaded   SubmissionStatus = "CARGADA"
	SubmissionClosed   SubmissionStatus = "CERRADA"
	SubmissionRejected SubmissionStatus = "RECHAZADA"
)

// ErrorKind classifies why a submission was rejected.
type ErrorKind string

const (
	ErrorStructural ErrorKind = "ESTRUCTURAL"
	ErrorData       ErrorKind = "DATOS"
)

type PayrollType string

const (
	PayrollMonthly                PayrollType = "MENSUAL"
	PayrollBonusFirstHalf         PayrollType = "AG01"
	PayrollBonusSecondHalf        PayrollType = "AG02"
	PayrollSupplementary          PayrollType = "SUPLEMENTARIA"
	PayrollCorrective             PayrollType = "RECTIFICATIVA"
	PayrollTeacherSettlement      PayrollType = "LIQUIDACION_DOCENTE"
	PayrollUnpaidLeaveSubstitutes PayrollType = "SUPLENCIAS_LICENCIAS_SIN_GOCE"
	PayrollSickLeaveSubstitutes   PayrollType = "SUPLENCIAS_ENFERMEDAD_MATERNIDAD"
	PayrollMaintenanceSUTE        PayrollType = "MAESTRANZA_SUTE"
	PayrollMaintenanceSOEME       PayrollType = "MAESTRANZA_SOEME"
)

// PayrollTypeNames maps payroll types to the names shown in reports.
var PayrollTypeNames = map[PayrollType]string{
	PayrollMonthly:                "Liquidación Mensual",
	PayrollBonusFirstHalf:         "Aguinaldo 1er Semestre",
	PayrollBonusSecondHalf:        "Aguinaldo 2do Semestre",
	PayrollSupplementary:          "Liquidación Suplementaria",
	PayrollCorrective:             "Liquidación Rectificativa",
	PayrollTeacherSettlement:      "Liquidación Docente",
	PayrollUnpaidLeaveSubstitutes: "Suplencias Licencias sin Goce",
	PayrollSickLeaveSubstitutes:   "Suplencias Enfermedad/Maternidad",
	PayrollMaintenanceSUTE:        "Maestranza SUTE",
	PayrollMaintenanceSOEME:       "Maestranza SOEME",
}

func (t PayrollType) Valid() bool {
	_, ok := PayrollTypeNames[t]
	return ok
}

// Submission is one uploaded workbook for a school, period and payroll type.
type Submission struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	SchoolID       uuid.UUID        `json:"school_id" db:"id_colegio"`
	Period         string           `json:"period" db:"periodo"`
	PayrollType    PayrollType      `json:"payroll_type" db:"tipo_liquidacion"`
	Status         SubmissionStatus `json:"status" db:"estado"`
	ErrorKind      *ErrorKind       `json:"error_kind,omitempty" db:"tipo_error"`
	RejectReason   *string          `json:"reject_reason,omitempty" db:"motivo_rechazo"`
	TotalRows      int              `json:"total_rows" db:"total_filas"`
	RowsWithErrors int              `json:"rows_with_errors" db:"filas_con_error"`
	TotalCost      float64          `json:"total_cost" db:"costo_total_presentado"`
	SchemaVersion  string           `json:"schema_version" db:"version_esquema"`
	FileName       string           `json:"file_name" db:"nombre_archivo"`
	UserID         uuid.UUID        `json:"user_id" db:"id_usuario"`
	SourceIP       *string          `json:"source_ip,omitempty" db:"ip_origen"`
	OriginalKey    *string          `json:"original_key,omitempty" db:"ruta_archivo_original"`
	ErrorReportKey *string          `json:"error_report_key,omitempty" db:"ruta_archivo_errores"`
	UploadedAt     time.Time        `json:"uploaded_at" db:"fecha_subida"`
	ClosedAt       *time.Time       `json:"closed_at,omitempty" db:"fecha_cierre"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
}

// Reject marks the submission as rejected for kind with a user-facing reason.
func (s *Submission) Reject(kind ErrorKind, reason string) {
	s.Status = SubmissionRejected
	s.ErrorKind = &kind
	s.RejectReason = &reason
}

// SubmissionFilter narrows submission listings. Zero values match everything.
type SubmissionFilter struct {
	SchoolID    *uuid.UUID
	Period      string
	Status      SubmissionStatus
	PayrollType PayrollType
	Limit       int
}

// Stage is the position of one ingestion in the intake state machine.
type Stage string

const (
	StageReceived           Stage = "RECEIVED"
	StageStructuralRejected Stage = "STRUCTURAL_REJECTED"
	StageDataRejected       Stage = "DATA_REJECTED"
	StageExtracted          Stage = "EXTRACTED"
	StagePersisted          Stage = "PERSISTED"
)

// Terminal reports whether no further transition can leave s.
func (s Stage) Terminal() bool {
	return s != StageReceived && s != StageExtracted
}
