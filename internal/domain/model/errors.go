package model

import (
	"errors"
	"fmt"
)

// Sentinel error kinds shared by every layer. Callers match them with errors.Is.
var (
	ErrUnauthorized = errors.New("could not validate credentials")
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("image not found")
)

// ValidationKind names the specific reason an upload was rejected.
type ValidationKind string

// Validation kinds, in the order the checks run.
const (
	FileTooLarge    ValidationKind = "file_too_large"
	UnsupportedType ValidationKind = "unsupported_type"
	ContentMismatch ValidationKind = "content_mismatch"
)

// ValidationError reports a rejected upload.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(kind ValidationKind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string { return e.Message }

// Is reports ErrValidation so callers can match the whole family.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports an unknown image id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Image with id '%s' not found", e.ID)
}

// Is reports ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationKindOf extracts the validation kind from err, if any.
func ValidationKindOf(err error) (ValidationKind, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Kind, true
	}
	return "", false
}
