// internal/domain/checkout/errors.go
package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart is returned when checkout is attempted with no cart or an
	// empty one. No order is created.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrValidation is returned when a required checkout field is missing.
	// Surfaced before any storage access.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when the customer's cart was held by a
	// concurrent checkout or mutation and the wait exceeded its bound.
	// Retryable.
	ErrConflict = errors.New("cart is locked by a concurrent operation")
)

// FieldError reports a missing required checkout field. It matches
// ErrValidation under errors.Is so callers can branch on the category and
// still name the field to the end user.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("validation failed: %s is required", e.Field)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrValidation
}

// PersistenceError wraps any storage-layer failure that aborted the checkout
// transaction. The whole unit of work has been rolled back; no raw driver
// error crosses this boundary without the wrapper.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
