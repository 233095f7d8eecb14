package domain

import (
	"fmt"
	"strings"
	"time"
)

// ServiceError is the error envelope returned by the HTTP and MCP surfaces.
type ServiceError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrInvalidInput      = "INVALID_INPUT"
	ErrValidation        = "VALIDATION_ERROR"
	ErrPresetUnavailable = "PRESET_SOURCE_ERROR"
	ErrResourceNotFound  = "NOT_FOUND"
	ErrRateLimit         = "RATE_LIMIT_EXCEEDED"
	ErrTimeout           = "REQUEST_TIMEOUT"
	ErrInternalServer    = "INTERNAL_SERVER_ERROR"
)

// ValidationError describes one missing or malformed field of a record.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in a record.
type ValidationErrors []*ValidationError

// Error joins the individual messages.
func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, e := range ve {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is match ErrIncompleteInput.
func (ve ValidationErrors) Unwrap() error {
	return ErrIncompleteInput
}

// Fields lists the offending field paths in order.
func (ve ValidationErrors) Fields() []string {
	out := make([]string, 0, len(ve))
	for _, e := range ve {
		out = append(out, e.Field)
	}
	return out
}

// NewServiceError creates a new ServiceError with timestamp
func NewServiceError(code, message, details, requestID string) *ServiceError {
	return &ServiceError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
