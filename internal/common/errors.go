package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error codes carried by AppError.
const (
	CodeConfiguration    = "CONFIG_ERROR"
	CodeRemoteExtraction = "REMOTE_EXTRACTION_FAILURE"
	CodeFileSystem       = "FILESYSTEM_ERROR"
	CodeRender           = "RENDER_ERROR"
	CodeInternal         = "INTERNAL_ERROR"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// GRPCStatus lets status.Code classify an AppError anywhere in a wrap chain.
func (e *AppError) GRPCStatus() *status.Status {
	return status.New(grpcCode(e.Code), e.Error())
}

func grpcCode(code string) codes.Code {
	switch code {
	case CodeConfiguration:
		return codes.InvalidArgument
	case CodeRemoteExtraction:
		return codes.Unavailable
	case CodeFileSystem, CodeRender, CodeInternal:
		return codes.Internal
	default:
		return codes.Unknown
	}
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError reports an invalid caller selection. Always fatal, always before any network call.
func NewConfigError(message string, cause error) *AppError {
	if cause == nil {
		cause = ErrInvalidInput
	}
	return NewAppError(CodeConfiguration, message, cause)
}

func NewConfigErrorf(format string, args ...interface{}) *AppError {
	return NewConfigError(fmt.Sprintf(format, args...), nil)
}

// NewFileSystemError wraps a failed mkdir/write/read of pipeline inputs or outputs.
func NewFileSystemError(message string, cause error) *AppError {
	return NewAppError(CodeFileSystem, message, cause)
}

// IsConfigError reports whether err (or anything it wraps) is a configuration error.
func IsConfigError(err error) bool {
	return HasCode(err, CodeConfiguration)
}

// HasCode reports whether an AppError with the given code is in err's chain.
func HasCode(err error, code string) bool {
	var ae *AppError
	for err != nil {
		if !errors.As(err, &ae) {
			return false
		}
		if ae.Code == code {
			return true
		}
		err = ae.Cause
	}
	return false
}

// ExitCode maps an error to a process exit status: 0 ok, 2 usage/config, 1 anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if status.Code(err) == codes.InvalidArgument {
		return 2
	}
	return 1
}
