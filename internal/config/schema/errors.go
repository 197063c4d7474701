package schema

import (
	"fmt"
	"strings"

	"github.com/sudomakeinstall/cardio/internal/config/raw"
)

// ValidationError reports the first constraint a configuration violates.
type ValidationError struct {
	// Path is the dot-separated path to the invalid value, with sequence
	// indexes in brackets (e.g. "transfer_function.stops[2].opacity").
	Path string

	// Value is the value received. Null for missing fields.
	Value raw.Value

	// Constraint describes what was expected.
	Constraint string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value.IsNull() {
		return fmt.Sprintf("invalid configuration at %s: %s", e.displayPath(), e.Constraint)
	}
	return fmt.Sprintf("invalid configuration at %s: got %s, want %s", e.displayPath(), e.Value, e.Constraint)
}

func (e *ValidationError) displayPath() string {
	if e.Path == "" {
		return "<root>"
	}
	return e.Path
}

// NewTypeError creates a validation error for type mismatch.
func NewTypeError(path string, expected Type, actual raw.Value) *ValidationError {
	return &ValidationError{
		Path:       path,
		Value:      actual,
		Constraint: fmt.Sprintf("a %s (found %s)", expected, actual.Kind()),
	}
}

// NewEnumError creates a validation error for invalid enum value.
func NewEnumError(path string, value raw.Value, allowed []string) *ValidationError {
	return &ValidationError{
		Path:       path,
		Value:      value,
		Constraint: fmt.Sprintf("one of [%s]", strings.Join(allowed, ", ")),
	}
}

// NewRangeError creates a validation error for out-of-range value.
func NewRangeError(path string, value raw.Value, f *Field) *ValidationError {
	var expected string
	lower := ">="
	if f.ExclusiveMinimum {
		lower = ">"
	}
	switch {
	case f.Minimum != nil && f.Maximum != nil && !f.ExclusiveMinimum:
		expected = fmt.Sprintf("between %v and %v", *f.Minimum, *f.Maximum)
	case f.Minimum != nil && f.Maximum != nil:
		expected = fmt.Sprintf("%s %v and <= %v", lower, *f.Minimum, *f.Maximum)
	case f.Minimum != nil:
		expected = fmt.Sprintf("%s %v", lower, *f.Minimum)
	case f.Maximum != nil:
		expected = fmt.Sprintf("<= %v", *f.Maximum)
	default:
		expected = "valid range"
	}
	return &ValidationError{
		Path:       path,
		Value:      value,
		Constraint: expected,
	}
}

// NewPatternError creates a validation error for pattern mismatch.
func NewPatternError(path string, value raw.Value, pattern string) *ValidationError {
	return &ValidationError{
		Path:       path,
		Value:      value,
		Constraint: fmt.Sprintf("a string matching %s", pattern),
	}
}

// NewRequiredError creates a validation error for missing required field.
func NewRequiredError(path string) *ValidationError {
	return &ValidationError{
		Path:       path,
		Constraint: "required field is missing",
	}
}

// NewUnknownFieldError creates a validation error for an undeclared field.
func NewUnknownFieldError(path string, value raw.Value) *ValidationError {
	return &ValidationError{
		Path:       path,
		Value:      value,
		Constraint: "no such field",
	}
}

// NewConstraintError creates a validation error for a cross-field rule.
func NewConstraintError(path string, value raw.Value, constraint string) *ValidationError {
	return &ValidationError{
		Path:       path,
		Value:      value,
		Constraint: constraint,
	}
}
