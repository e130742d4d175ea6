package engine

import (
	"errors"
	"fmt"
)

// Error is returned by every engine operation that refuses a request.
//
// Error() is the human-readable reason, suitable for showing to an operator
// as-is. Code identifies the category for programmatic checks. The engine
// state is unchanged whenever an Error is returned.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Subsystem is the subsystem the request named.
	Subsystem string

	// Message is the human-readable reason.
	Message string

	// Cause is the nested failure for DEPENDENCY_UNSATISFIABLE.
	Cause error
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeUnknownSubsystem indicates the name is not registered.
	ErrCodeUnknownSubsystem ErrorCode = "UNKNOWN_SUBSYSTEM"

	// ErrCodeEmptyName indicates an empty subsystem name.
	ErrCodeEmptyName ErrorCode = "EMPTY_NAME"

	// ErrCodeDependencyUnsatisfiable indicates a required subsystem could
	// not be enabled.
	ErrCodeDependencyUnsatisfiable ErrorCode = "DEPENDENCY_UNSATISFIABLE"

	// ErrCodeConflict indicates a conflicting subsystem is enabled.
	ErrCodeConflict ErrorCode = "CONFLICT"

	// ErrCodeInhibited indicates an enabled subsystem preempts this one.
	ErrCodeInhibited ErrorCode = "INHIBITED"

	// ErrCodeDependentActive indicates an enabled subsystem requires this one.
	ErrCodeDependentActive ErrorCode = "DEPENDENT_ACTIVE"

	// ErrCodeNotReady indicates a readiness check failed.
	ErrCodeNotReady ErrorCode = "NOT_READY"
)

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the nested cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// IsUnknownSubsystem returns true if err is an unknown-subsystem error.
// Uses errors.As to handle wrapped errors.
func IsUnknownSubsystem(err error) bool { return CodeOf(err) == ErrCodeUnknownSubsystem }

// IsConflict returns true if err is a conflict error.
func IsConflict(err error) bool { return CodeOf(err) == ErrCodeConflict }

// IsInhibited returns true if err is an inhibited error.
func IsInhibited(err error) bool { return CodeOf(err) == ErrCodeInhibited }

// IsDependentActive returns true if err is a dependent-active error.
func IsDependentActive(err error) bool { return CodeOf(err) == ErrCodeDependentActive }

// IsDependencyUnsatisfiable returns true if err is a dependency error.
func IsDependencyUnsatisfiable(err error) bool {
	return CodeOf(err) == ErrCodeDependencyUnsatisfiable
}

// IsNotReady returns true if err is a readiness error.
func IsNotReady(err error) bool { return CodeOf(err) == ErrCodeNotReady }

func newEmptyNameError() *Error {
	return &Error{
		Code:    ErrCodeEmptyName,
		Message: "subsystem name must not be empty",
	}
}

func newUnknownError(name string) *Error {
	return &Error{
		Code:      ErrCodeUnknownSubsystem,
		Subsystem: name,
		Message:   fmt.Sprintf("unknown subsystem '%s'", name),
	}
}

func newInhibitedError(name, by string) *Error {
	return &Error{
		Code:      ErrCodeInhibited,
		Subsystem: name,
		Message:   fmt.Sprintf("'%s' is inhibited while '%s' is enabled", name, by),
	}
}

func newConflictError(name, with string) *Error {
	return &Error{
		Code:      ErrCodeConflict,
		Subsystem: name,
		Message:   fmt.Sprintf("'%s' conflicts with enabled subsystem '%s'", name, with),
	}
}

func newDependencyError(name, required string, cause error) *Error {
	return &Error{
		Code:      ErrCodeDependencyUnsatisfiable,
		Subsystem: name,
		Message:   fmt.Sprintf("'%s' requires '%s': %v", name, required, cause),
		Cause:     cause,
	}
}

func newDependentActiveError(name, dependent string) *Error {
	return &Error{
		Code:      ErrCodeDependentActive,
		Subsystem: name,
		Message:   fmt.Sprintf("cannot disable '%s': '%s' requires it", name, dependent),
	}
}
