// Package errs holds the error vocabulary shared by all domain services.
// Each domain keeps its own ErrNotFound sentinel; this package covers the
// two cross-cutting classes: business-rule violations that carry a reason
// for the caller, and conflicts with state that already exists.
package errs

import (
	"errors"
	"fmt"
)

// ErrConflict marks a mutation refused because the target already exists:
// a taken username, an already-enrolled ledger member.
var ErrConflict = errors.New("already exists")

// ValidationError is a business-rule violation with a human-readable
// reason naming the specific rule that was broken.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Validation builds a ValidationError from a format string.
func Validation(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
