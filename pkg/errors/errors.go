package errors

import (
	"errors"
	"fmt"
)

var (
	ErrFileNotFound       = errors.New("file not found")
	ErrInvalidFileFormat  = errors.New("invalid file format: only .xlsx workbooks are accepted")
	ErrFileTooLarge       = errors.New("file exceeds the maximum upload size")
	ErrUnreadableWorkbook = errors.New("workbook could not be read")
	ErrSheetNotFound      = errors.New("expected worksheet not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrInvalidTransition  = errors.New("invalid submission status transition")
	ErrDuplicateClosed    = errors.New("a closed monthly submission already exists for this school and period")
	ErrForbidden          = errors.New("forbidden")
	ErrUnknownSchema      = errors.New("unknown schema version")
	ErrQueueUnavailable   = errors.New("asynchronous intake is not configured")
)

// ValidationError reports an invalid request field.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

type RetryableError struct {
	Err     error
	Message string
}

func (e RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %s - %s", e.Message, e.Err.Error())
}

func (e RetryableError) Unwrap() error {
	return e.Err
}

func NewRetryableError(err error, message string) error {
	return RetryableError{
		Err:     err,
		Message: message,
	}
}

// IsRetryable reports whether err, or anything it wraps, is a RetryableError.
func IsRetryable(err error) bool {
	var r RetryableError
	return errors.As(err, &r)
}
