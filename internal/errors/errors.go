// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies application errors for the API layer.
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation_error"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeProcessing  ErrorType = "processing_error"
	ErrorTypeUnavailable ErrorType = "service_unavailable"
	ErrorTypeTimeout     ErrorType = "timeout"
)

// AppError carries a type, a user-facing message, and the wrapped cause.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause to errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError of the given type.
func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Err: cause}
}

// NewValidationError flags bad input.
func NewValidationError(message string, cause error) *AppError {
	return New(ErrorTypeValidation, message, cause)
}

// NewNotFoundError flags a missing resource.
func NewNotFoundError(message string, cause error) *AppError {
	return New(ErrorTypeNotFound, message, cause)
}

// NewUnavailableError flags a failed call to an external collaborator.
func NewUnavailableError(message string, cause error) *AppError {
	return New(ErrorTypeUnavailable, message, cause)
}

// TypeOf extracts the error type, defaulting to processing_error.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeProcessing
}
