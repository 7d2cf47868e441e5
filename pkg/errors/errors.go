package errors

import (
	"errors"
	"fmt"
)

// Error represents a typed pipeline error carrying the process exit code a stage should report.
type Error struct {
	Code     string
	Message  string
	ExitCode int
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so Clone'd and Wrap'ped values compare equal to the sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, exitCode int, message string) *Error {
	return &Error{Code: code, ExitCode: exitCode, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, exitCode int, message string) *Error {
	return &Error{Code: code, ExitCode: exitCode, Message: message, Err: err}
}

// Predefined errors for the pipeline stages.
var (
	ErrDataValidation          = New("DATA_VALIDATION", 2, "data validation failed")
	ErrInfeasibleSectioning    = New("INFEASIBLE_SECTIONING", 3, "capacity bounds cannot be satisfied")
	ErrUnsupportedSectionCount = New("UNSUPPORTED_SECTION_COUNT", 4, "unsupported section count")
	ErrInfeasible              = New("INFEASIBLE", 5, "no assignment satisfies the hard constraints")
	ErrTimedOut                = New("TIMED_OUT", 6, "time limit reached without a feasible assignment")
	ErrIO                      = New("IO", 7, "i/o failure")
	ErrSearchExhausted         = New("SEARCH_EXHAUSTED", 8, "search budget exhausted without a feasible assignment or an infeasibility proof")
	ErrCancelled               = New("CANCELLED", 130, "run cancelled")
	ErrInternal                = New("INTERNAL_ERROR", 1, "internal error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.ExitCode, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Clonef is Clone with a formatted message.
func Clonef(err *Error, format string, args ...any) *Error {
	return Clone(err, fmt.Sprintf(format, args...))
}
