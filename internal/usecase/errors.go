package usecase

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both a missing asset and one the caller may not see.
	ErrNotFound               = errors.New("not found")
	ErrQuotaExceeded          = errors.New("quota exceeded")
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrStorageIO              = errors.New("storage error")
	ErrInvalidTextIcon        = errors.New("invalid text icon")
)

// FieldError is a validation failure addressed to a single input field.
type FieldError struct {
	Field   string
	Code    string
	Message string
	Err     error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// storageError logs the failure with full detail and returns it wrapped in
// ErrStorageIO.
func (u Usecase) storageError(ctx context.Context, op string, err error) error {
	u.logger.ErrorContext(ctx, "storage failure", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %w", ErrStorageIO, op, err)
}
