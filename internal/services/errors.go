package services

import (
	"errors"
	"fmt"
	"strings"

	"reportd/internal/reporting"
)

// Export errors
var (
	// ErrInvalidRequest reports a missing or unknown entity kind or output format
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidDate reports a date bound that is not a YYYY-MM-DD calendar day
	ErrInvalidDate = reporting.ErrInvalidDate

	// ErrFormattingFailed reports that a serializer could not produce output
	ErrFormattingFailed = errors.New("formatting failed")
)

// FieldViolation describes one rejected request parameter
type FieldViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// RequestError lists every rejected parameter of a request
type RequestError struct {
	Violations []FieldViolation
}

// Error implements the error interface
func (e *RequestError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+" "+v.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidRequest, strings.Join(parts, "; "))
}

// Unwrap makes errors.Is(err, ErrInvalidRequest) hold
func (e *RequestError) Unwrap() error {
	return ErrInvalidRequest
}
