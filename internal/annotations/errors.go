package annotations

import (
	"fmt"
	"strings"

	"github.com/toyz/jointc/internal/models"
)

// AnnotationError is a problem with a marker, reported at a source span
type AnnotationError interface {
	error
	Location() models.Span
	Suggestion() string
	Code() ErrorCode
}

// ErrorCode represents different types of annotation errors
type ErrorCode int

const (
	ValidationErrorCode ErrorCode = iota
	SchemaErrorCode
	RegistrationErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case ValidationErrorCode:
		return "ValidationError"
	case SchemaErrorCode:
		return "SchemaError"
	case RegistrationErrorCode:
		return "RegistrationError"
	default:
		return "UnknownError"
	}
}

// ValidationError is a member value that does not fit the marker schema.
// Msg is the user-facing compiler message.
type ValidationError struct {
	Marker    string
	Parameter string
	Msg       string
	Loc       models.Span
	Hint      string
}

func (e *ValidationError) Error() string         { return e.Msg }
func (e *ValidationError) Location() models.Span { return e.Loc }
func (e *ValidationError) Suggestion() string    { return e.Hint }
func (e *ValidationError) Code() ErrorCode       { return ValidationErrorCode }

// SchemaError is a failed whole-marker check
type SchemaError struct {
	Msg  string
	Loc  models.Span
	Hint string
}

func (e *SchemaError) Error() string         { return e.Msg }
func (e *SchemaError) Location() models.Span { return e.Loc }
func (e *SchemaError) Suggestion() string    { return e.Hint }
func (e *SchemaError) Code() ErrorCode       { return SchemaErrorCode }

// RegistrationError is raised when a schema cannot be registered
type RegistrationError struct {
	Marker string
	Msg    string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registration error for @%s: %s", e.Marker, e.Msg)
}
func (e *RegistrationError) Location() models.Span { return models.NoSpan }
func (e *RegistrationError) Suggestion() string    { return "" }
func (e *RegistrationError) Code() ErrorCode       { return RegistrationErrorCode }

// MultipleValidationErrors collects every problem found on one marker
type MultipleValidationErrors struct {
	Errors []AnnotationError
}

func (e *MultipleValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var messages []string
	for i, err := range e.Errors {
		messages = append(messages, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}
	return fmt.Sprintf("multiple annotation errors (%d total):\n%s", len(e.Errors), strings.Join(messages, "\n"))
}

// Unwrap returns the underlying errors for error inspection
func (e *MultipleValidationErrors) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		out[i] = err
	}
	return out
}

// add appends err, ignoring nil
func (e *MultipleValidationErrors) add(err AnnotationError) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// ErrorOrNil returns nil when nothing was collected
func (e *MultipleValidationErrors) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Problems flattens err into the individual annotation errors it carries
func Problems(err error) []AnnotationError {
	switch e := err.(type) {
	case nil:
		return nil
	case *MultipleValidationErrors:
		return e.Errors
	case AnnotationError:
		return []AnnotationError{e}
	}
	return []AnnotationError{&SchemaError{Msg: err.Error(), Loc: models.NoSpan}}
}
