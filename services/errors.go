package services

import (
	"errors"
	"fmt"
)

// Service error codes. Controllers map these onto HTTP statuses.
const (
	CodeNotFound               = "NOT_FOUND"
	CodeForbidden              = "FORBIDDEN"
	CodeValidation             = "VALIDATION_ERROR"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodeTableOwnershipConflict = "TABLE_OWNERSHIP_CONFLICT"
	CodeInvalidState           = "INVALID_STATE"
	CodePrintFailed            = "PRINT_FAILED"
)

// ServiceError is a failure a caller can act on
type ServiceError struct {
	Code    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func newError(code, format string, args ...any) *ServiceError {
	return &ServiceError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) *ServiceError {
	return newError(CodeNotFound, format, args...)
}

func invalid(format string, args ...any) *ServiceError {
	return newError(CodeValidation, format, args...)
}

// ErrorCode returns the ServiceError code carried by err, or "" when there is none
func ErrorCode(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsCode reports whether err carries the given service error code
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}
