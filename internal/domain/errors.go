package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidField is the sentinel wrapped by every FieldError.
	ErrInvalidField = errors.New("invalid field")

	// ErrNilApproach is returned when a nil approach is appended to an NEO.
	ErrNilApproach = errors.New("nil approach")
	// ErrDesignationMismatch is returned when an approach is appended to an NEO
	// with a different designation.
	ErrDesignationMismatch = errors.New("approach designation does not match neo")
	// ErrAlreadyLinked is returned when an approach is appended a second time.
	ErrAlreadyLinked = errors.New("approach already linked to a neo")
)

// FieldError reports a raw field value that could not be coerced to its
// declared type. Entity constructors return it instead of a partially
// initialized entity.
type FieldError struct {
	Entity   string // "neo" or "approach"
	Field    string // raw field name, e.g. "diameter"
	Value    string // raw value as received
	Expected string // expected type, e.g. "float"
	Err      error  // underlying parse error, if any
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("%s: field %q value %q: expected %s", e.Entity, e.Field, e.Value, e.Expected)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap lets errors.Is match both ErrInvalidField and the parse cause.
func (e *FieldError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidField}
	}
	return []error{ErrInvalidField, e.Err}
}
