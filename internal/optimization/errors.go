package optimization

import (
	"errors"
	"fmt"
)

// Kind classifies bridge errors.
type Kind string

const (
	// KindConfiguration covers a missing or ambiguous objective and values
	// that do not fit the configuration schema.
	KindConfiguration Kind = "ConfigurationError"
	// KindConversion is a host value that cannot become a native buffer.
	KindConversion Kind = "ConversionError"
	// KindCallbackContract is a host callback returning the wrong type or shape.
	KindCallbackContract Kind = "CallbackContractViolation"
	// KindHostException is a host callback that failed (returned an error or panicked).
	KindHostException Kind = "HostException"
	// KindCanceled is a run stopped because its context ended.
	KindCanceled Kind = "Canceled"
)

var (
	ErrMissingObjective   = errors.New("minObjectiveFunction or maxObjectiveFunction must be specified")
	ErrAmbiguousObjective = errors.New("only one of minObjectiveFunction and maxObjectiveFunction may be specified")
	ErrNotCallable        = errors.New("value is not a function")
	ErrNotArray           = errors.New("value is not an array")
	ErrNotNumeric         = errors.New("value is not a number")
	ErrLengthMismatch     = errors.New("array length mismatch")
)

// Error represents an optimization error with context
// that can be wrapped with additional information.
type Error struct {
	// Kind classifies the error.
	Kind Kind
	// Message describes the error that occurred.
	Message string
	// Op is the configuration key or callback the error belongs to.
	Op string
	// Component is the component where the error occurred.
	Component string
	// Err is the underlying error that triggered this one, if any.
	Err error
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var prefix string
	switch {
	case e.Component != "" && e.Op != "":
		prefix = fmt.Sprintf("%s: %s", e.Component, e.Op)
	case e.Component != "":
		prefix = e.Component
	case e.Op != "":
		prefix = e.Op
	}
	if e.Kind != "" {
		if prefix != "" {
			prefix = string(e.Kind) + ": " + prefix
		} else {
			prefix = string(e.Kind)
		}
	}

	if e.Err != nil {
		if prefix != "" {
			return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	if prefix != "" {
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithOperation adds operation context to the error.
func (e *Error) WithOperation(op string) *Error {
	e.Op = op
	return e
}

// WithComponent adds component context to the error.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// NewError creates a new optimization error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// NewErrorf creates a new optimization error with formatted message.
func NewErrorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError wraps an existing error with additional context.
// If err is nil, WrapError returns nil.
func WrapError(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// WrapErrorf wraps an existing error with additional formatted context.
// If err is nil, WrapErrorf returns nil.
func WrapErrorf(err error, kind Kind, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// IsOptimizationError checks if an error is of type Error.
// If the error is an optimization error, it returns the error and true.
// Otherwise, it returns nil and false.
func IsOptimizationError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err, or any optimization error it wraps, is of kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
