package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates malformed or missing required fields.
	ErrValidation = errors.New("validation failed")
	// ErrTenant indicates no resolvable company for the acting caller.
	ErrTenant = errors.New("no company resolved for caller")
	// ErrForbidden indicates a cross-tenant reference.
	ErrForbidden = errors.New("resource belongs to another company")
	// ErrNotFound indicates a referenced resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock indicates a stock decrement would go negative.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrLedgerImbalance indicates the trial balance assertion failed.
	ErrLedgerImbalance = errors.New("ledger debits and credits do not balance")
	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("duplicate entry")
)

// Validationf wraps ErrValidation with a formatted detail message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Forbiddenf wraps ErrForbidden with a formatted detail message.
func Forbiddenf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound with a formatted detail message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}
