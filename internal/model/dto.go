package model

import "github.com/google/uuid"

// IngestionJob is queued for submissions accepted on the async upload path.
type IngestionJob struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	StorageKey   string    `json:"storage_key"`
	FileName     string    `json:"file_name"`
}

// UploadRequest carries the form fields of an upload.
type UploadRequest struct {
	SchoolID    uuid.UUID   `json:"school_id" validate:"required"`
	Period      string      `json:"period" validate:"required,len=7,period"`
	PayrollType PayrollType `json:"payroll_type" validate:"required,payroll_type"`
	FileName    string      `json:"file_name" validate:"required,notblank"`
	Size        int64       `json:"size" validate:"gt=0"`
}

// UploadResponse is returned by both upload paths.
type UploadResponse struct {
	Success        bool       `json:"success"`
	SubmissionID   *uuid.UUID `json:"submission_id,omitempty"`
	Status         string     `json:"status"`
	ErrorKind      *ErrorKind `json:"error_kind,omitempty"`
	Message        string     `json:"message"`
	Details        []string   `json:"details,omitempty"`
	Errors         []RowError `json:"errors,omitempty"`
	TotalRows      int        `json:"total_rows"`
	RowsWithErrors int        `json:"rows_with_errors"`
	HasMoreErrors  bool       `json:"has_more_errors,omitempty"`
	TotalCost      float64    `json:"total_cost,omitempty"`
}

// StatusRequest is the body of the reject endpoint.
type StatusRequest struct {
	Reason string `json:"reason" validate:"required,notblank,max=500"`
}

// ListRequest carries the query parameters of the submission listing.
type ListRequest struct {
	SchoolID    string      `form:"school_id" json:"school_id" validate:"omitempty,uuid"`
	Period      string      `form:"period" json:"period" validate:"omitempty,len=7,period"`
	Status      string      `form:"status" json:"status" validate:"omitempty,oneof=PENDIENTE CARGADA CERRADA RECHAZADA"`
	PayrollType PayrollType `form:"payroll_type" json:"payroll_type" validate:"omitempty,payroll_type"`
	Limit       int         `form:"limit" json:"limit" validate:"omitempty,min=1,max=500"`
}
