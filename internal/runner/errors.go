package runner

import (
	"errors"
	"fmt"
)

// Exit codes used when no external process supplied one.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// ExitError is an error that carries the exit code the process should terminate with.
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// Fail builds an ExitError with the generic failure code.
func Fail(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitFailure, Message: msg, Cause: cause}
}

// Check turns a ProcessResult (and a start error) into an ExitError carrying the
// process's own exit code. It returns nil when the process succeeded.
func Check(result ProcessResult, err error, msg string) error {
	if err != nil {
		return &ExitError{Code: ExitFailure, Message: msg, Cause: err}
	}
	if !result.Success() {
		return &ExitError{Code: result.Code, Message: msg}
	}
	return nil
}

// ExitCode maps an error returned by a command to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
