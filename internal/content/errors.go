package content

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors for content operations.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("content not found")
	ErrNoFile       = errors.New("no file uploaded")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrUpload       = errors.New("asset upload failed")
	ErrPersistence  = errors.New("content store unavailable")
)

// FieldError is a validation failure on a named request field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

// Invalid builds a FieldError.
func Invalid(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}

// Persistence wraps a document store failure.
func Persistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

// MapHTTPStatus maps content domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNoFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}
