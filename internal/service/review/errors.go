package review

import (
	"errors"
	"fmt"

	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/store"
)

// Common error types for ReviewService
var (
	// ErrItemNotFound indicates that the item does not exist.
	ErrItemNotFound = fmt.Errorf("review: %w", store.ErrItemNotFound)

	// ErrItemNotOwned indicates that the caller does not own the item.
	ErrItemNotOwned = errors.New("unauthorized access: item not owned by user")

	// ErrInvalidRating is returned for ratings outside Hard, Normal and Easy.
	ErrInvalidRating = domain.ErrInvalidRating

	// ErrInvalidCount is returned for sample sizes outside the allowed range.
	ErrInvalidCount = domain.ErrInvalidCount

	// ErrPersistence indicates that the store failed to read or write.
	ErrPersistence = errors.New("persistence failure")
)

// ServiceError wraps errors from the review service with the operation that
// failed, so callers can use errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g. "rate", "set_archived")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a ServiceError for the given operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// persistenceError wraps a store failure so that it matches both ErrPersistence
// and the original store error.
func persistenceError(operation, message string, err error) error {
	return NewServiceError(operation, message, fmt.Errorf("%w: %w", ErrPersistence, err))
}

// isDomainError reports whether err is one of the errors returned to callers
// unchanged.
func isDomainError(err error) bool {
	return errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrItemNotOwned) ||
		errors.Is(err, ErrInvalidRating) ||
		errors.Is(err, ErrInvalidCount)
}
