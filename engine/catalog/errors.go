package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors for catalog construction failures. All are detected at
// construction time; a failed entity is never retained in the catalog.
var (
	ErrDuplicateDesignator = errors.New("duplicate designator")
	ErrPinCountUnknown     = errors.New("pin count unknown")
	ErrPinCountMismatch    = errors.New("pin count mismatch")
	ErrDuplicatePin        = errors.New("duplicate pin")
	ErrSimplePinCount      = errors.New("simple connectors may only have one pin")
	ErrWireCountUnknown    = errors.New("wire count unknown")
	ErrWireCountMismatch   = errors.New("wire count mismatch")
	ErrUnknownUnit         = errors.New("unknown unit")
	ErrBadLoop             = errors.New("loop must reference exactly two existing pins")
	ErrShieldLabel         = errors.New(`"s" is reserved as the shield wire label`)
	ErrPartListLength      = errors.New("part number lists must match wirecount and require a bundle")
	ErrBadMultiplier       = errors.New("invalid quantity multiplier")
)

// FieldError wraps a sentinel with the designator and field that failed.
type FieldError struct {
	Designator string
	Field      string
	Value      string
	Wrapped    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("catalog: %s: %s: %s (value=%q)", e.Designator, e.Field, e.Wrapped, e.Value)
}

func (e *FieldError) Unwrap() error { return e.Wrapped }

// NewFieldError creates a FieldError.
func NewFieldError(designator, field, value string, wrapped error) *FieldError {
	return &FieldError{Designator: designator, Field: field, Value: value, Wrapped: wrapped}
}
