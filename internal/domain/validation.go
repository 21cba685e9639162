package domain

import "fmt"

// ValidationError describes a single invalid field. It wraps a sentinel so
// callers can match with errors.Is(err, ErrValidation) or a more specific error.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError returns a ValidationError for field. If err is nil the
// error wraps ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
