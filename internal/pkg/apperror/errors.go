// internal/pkg/apperror/errors.go
package apperror

import (
	"errors"
	"fmt"
)

// ValidationError reports bad input such as a missing field or an empty cart.
// No state is changed when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports an unknown product, order or other entity
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

// InsufficientStockError aborts a checkout and names the offending product
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product '%s' (id %d). Available: %d, Requested: %d",
		e.ProductName, e.ProductID, e.Available, e.Requested)
}

// InvalidVoucherError rejects a voucher code with a human readable reason
type InvalidVoucherError struct {
	Code   string
	Reason string
}

func (e *InvalidVoucherError) Error() string {
	return fmt.Sprintf("voucher %q rejected: %s", e.Code, e.Reason)
}

// PersistenceError wraps storage failures. Only the operation is shown to
// callers; the cause is for operator logs.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Validation is shorthand for a field-level ValidationError
func Validation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFound is shorthand for a NotFoundError
func NotFound(entity string, key interface{}) error {
	return &NotFoundError{Entity: entity, Key: fmt.Sprint(key)}
}

// Persistence wraps err unless it is already classified
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsClassified(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsClassified reports whether err already carries one of the taxonomy types
func IsClassified(err error) bool {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		stockErr      *InsufficientStockError
		voucherErr    *InvalidVoucherError
		persistErr    *PersistenceError
	)
	return errors.As(err, &validationErr) ||
		errors.As(err, &notFoundErr) ||
		errors.As(err, &stockErr) ||
		errors.As(err, &voucherErr) ||
		errors.As(err, &persistErr)
}
