package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgs  = errors.New("invalid arguments")
	ErrFileNotFound = errors.New("file not found")
	ErrIO           = errors.New("i/o failure")
	ErrInvalidInput = errors.New("invalid input")
	ErrSink         = errors.New("report sink failure")
	ErrTimeout      = errors.New("operation timed out")
)

// Process exit codes used by the command-line tools.
const (
	ExitOK      = 0
	ExitFailure = 1
)

type AppError struct {
	Err      error
	Message  string
	ExitCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, exitCode int, message string) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  message,
		ExitCode: exitCode,
	}
}

func Newf(sentinel error, exitCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  fmt.Sprintf(format, args...),
		ExitCode: exitCode,
	}
}

// ExitCode maps an error returned by a command to the process exit status.
// Usage errors terminate cleanly; every other failure exits non-zero.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}

	switch {
	case errors.Is(err, ErrInvalidArgs):
		return ExitOK
	default:
		return ExitFailure
	}
}
