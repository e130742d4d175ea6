package vehicle

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes transition rejections.
type ErrorCode string

const (
	// ErrCodeWrongState indicates the command is not legal from the
	// current state.
	ErrCodeWrongState ErrorCode = "WRONG_STATE"

	// ErrCodeGuardFailed indicates the command is legal from the current
	// state but a readiness guard failed.
	ErrCodeGuardFailed ErrorCode = "GUARD_FAILED"

	// ErrCodeAlreadyInTerminalState indicates an emergency request while in
	// Preflight or Emergency.
	ErrCodeAlreadyInTerminalState ErrorCode = "ALREADY_IN_TERMINAL_STATE"
)

// TransitionError is returned when a command is rejected. The vehicle
// state is unchanged whenever a TransitionError is returned.
type TransitionError struct {
	Command Command
	Code    ErrorCode

	// Reason is the bare reason, as carried by the transition_rejected
	// event.
	Reason string

	// Cause is the guard failure for GUARD_FAILED.
	Cause error
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Command, e.Reason)
}

// Unwrap returns the guard failure, if any.
func (e *TransitionError) Unwrap() error {
	return e.Cause
}

func codeOf(err error) ErrorCode {
	var te *TransitionError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// IsWrongState returns true if err is a wrong-state rejection.
func IsWrongState(err error) bool { return codeOf(err) == ErrCodeWrongState }

// IsGuardFailed returns true if err is a guard rejection.
func IsGuardFailed(err error) bool { return codeOf(err) == ErrCodeGuardFailed }

// IsAlreadyInTerminalState returns true if err is a terminal-state rejection.
func IsAlreadyInTerminalState(err error) bool {
	return codeOf(err) == ErrCodeAlreadyInTerminalState
}

func newWrongStateError(cmd Command) *TransitionError {
	if cmd == CmdEmergency {
		return &TransitionError{
			Command: cmd,
			Code:    ErrCodeAlreadyInTerminalState,
			Reason:  "already in terminal state",
		}
	}
	// Every other command has exactly one source state.
	return &TransitionError{
		Command: cmd,
		Code:    ErrCodeWrongState,
		Reason:  fmt.Sprintf("must be in %s state", sources(cmd)[0]),
	}
}

func newGuardError(cmd Command, reason string, cause error) *TransitionError {
	return &TransitionError{
		Command: cmd,
		Code:    ErrCodeGuardFailed,
		Reason:  reason,
		Cause:   cause,
	}
}
