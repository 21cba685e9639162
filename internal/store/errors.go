package store

import (
	"errors"
	"fmt"
)

// Sentinels every ItemStore backend maps driver failures onto. Callers
// match them with errors.Is; backend details stay in the wrapped error.
var (
	ErrNotFound  = errors.New("entity not found")
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity covers rows rejected by a schema constraint.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed covers lock timeouts, serialization failures and
	// busy databases. The service does not retry them.
	ErrTransactionFailed = errors.New("transaction failed")

	ErrItemNotFound = fmt.Errorf("%w: item", ErrNotFound)
	ErrItemExists   = fmt.Errorf("%w: item", ErrDuplicate)
)

// IsNotFoundError reports whether err is ErrNotFound or one of its entity
// variants.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is ErrDuplicate or one of its entity
// variants.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError records which store operation failed on which entity.
type StoreError struct {
	Entity    string
	Operation string
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	msg := e.Operation + " operation on " + e.Entity + " failed: " + e.Message
	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err with the failing entity and operation.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Message: message, Err: err}
}
