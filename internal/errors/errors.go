package errors

import (
	"errors"
	"fmt"
)

// Error is a classified engine error.
type Error struct {
	Kind Kind
	Code Code
	Msg  string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		if e.Msg != "" {
			return fmt.Sprintf("%s: %v", e.Msg, e.Err)
		}
		return e.Err.Error()
	}
	return e.Msg
}

// Unwrap exposes the wrapped error for errors.Is/As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New returns a classified error with the code's default kind.
func New(code Code, msg string) *Error {
	return &Error{Kind: code.DefaultKind(), Code: code, Msg: msg}
}

// Newf returns a classified error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap annotates err with a code and message, keeping the chain intact.
func Wrap(code Code, msg string, err error) *Error {
	return &Error{Kind: code.DefaultKind(), Code: code, Msg: msg, Err: err}
}

// KindOf extracts the kind from an error chain, or KindUnknown.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return KindUnknown
}

// CodeOf extracts the code from an error chain, or CodeUnknown.
func CodeOf(err error) Code {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Code
	}
	return CodeUnknown
}

// Is reports whether any error in the chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in the chain matching target.
func As(err error, target any) bool { return errors.As(err, target) }
