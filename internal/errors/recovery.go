package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError is returned by Capture when the guarded function panicked.
type PanicError struct {
	// Value is whatever was passed to panic.
	Value interface{}
	// Stack is the goroutine stack at the point of recovery.
	Stack string
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// Unwrap exposes a panicked error value.
func (p *PanicError) Unwrap() error {
	if err, ok := p.Value.(error); ok {
		return err
	}
	return nil
}

// Capture runs fn and converts a panic into an *Error wrapping a *PanicError.
// Errors returned by fn are passed through unchanged.
func Capture(op string, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &Error{
				Err:       &PanicError{Value: rec, Stack: string(debug.Stack())},
				Message:   "recovered from panic",
				Operation: op,
				Stack:     getStackTrace(3),
			}
		}
	}()
	return fn()
}
