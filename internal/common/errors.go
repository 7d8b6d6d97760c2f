package common

import (
	"errors"
	"fmt"
)

// AppError carries a stable code alongside a human message and cause.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// Sentinel errors for the pipeline's error taxonomy.
var (
	ErrUnsupportedType  = errors.New("unsupported file type")
	ErrDuplicate        = errors.New("duplicate receipt")
	ErrTooManyFiles     = errors.New("too many files in one submission")
	ErrExtractionFailed = errors.New("extraction failed")
	ErrEngineTimeout    = errors.New("extraction engine timed out")
	ErrNotFound         = errors.New("record not found")
	ErrStore            = errors.New("store error")
)

// WrapError annotates err with a message, preserving the chain.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
