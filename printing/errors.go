package printing

import (
	"errors"
	"fmt"
)

// Printer error codes
const (
	CodeNotConfigured = "PRINTER_NOT_CONFIGURED"
	CodeUnreachable   = "PRINTER_UNREACHABLE"
	CodeWriteFailed   = "PRINTER_WRITE_FAILED"
)

// ErrNotConfigured is wrapped by PrinterError when a category has no endpoint
var ErrNotConfigured = errors.New("no printer endpoint configured")

// PrinterError describes a failed print job
type PrinterError struct {
	Code     string
	Category string // routing category, or "receipt"
	Endpoint string
	Attempts int
	Err      error
}

func (e *PrinterError) Error() string {
	switch e.Code {
	case CodeNotConfigured:
		return fmt.Sprintf("printer not configured for category %s", e.Category)
	case CodeUnreachable:
		return fmt.Sprintf("printer %s unreachable after %d attempts: %v", e.Endpoint, e.Attempts, e.Err)
	default:
		return fmt.Sprintf("printer %s write failed: %v", e.Endpoint, e.Err)
	}
}

func (e *PrinterError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the PrinterError code carried by err, or "" when there is none
func ErrorCode(err error) string {
	var pe *PrinterError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
