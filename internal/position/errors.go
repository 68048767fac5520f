// =============================
// File: internal/position/errors.go
// =============================
package position

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is matched by every construction-time invariant violation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDivisionUndefined is returned by MaxLeverageFor when ltv == 1.
	ErrDivisionUndefined = errors.New("max leverage undefined for ltv == 1")
)

// InvalidInputError describes which input broke which invariant.
type InvalidInputError struct {
	Field  string
	Value  float64
	Reason string
	Err    error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrInvalidInput) succeed for any InvalidInputError.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// IsInvalidInput reports whether err was caused by rejected position inputs.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func invalid(field string, value float64, reason string) error {
	return &InvalidInputError{Field: field, Value: value, Reason: reason}
}
