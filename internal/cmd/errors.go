package cmd

import (
	"errors"
	"fmt"
)

// Process exit codes, following sysexits(3).
const (
	ExitSuccess            = 0
	ExitFailure            = 1
	ExitInvalidArgument    = 64
	ExitNotFound           = 66
	ExitServiceUnavailable = 69
	ExitIOError            = 74
	ExitConfigError        = 78
	ExitInterrupted        = 130
)

// ExitError carries the exit code a failed command should terminate with.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitError creates an error that will cause the CLI to exit with the given code.
func exitError(code int, message string, err error) error {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ExitCode returns the exit code for err: 0 for nil, the ExitError code when
// one is in the chain, and ExitFailure otherwise.
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
