package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates invalid or missing caller input,
	// e.g. a recommendation request with neither preference text nor a profile
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeExternal indicates a failure in an external collaborator
	// (judgment model, geocoder, places lookup, risk service)
	ErrorTypeExternal ErrorType = "EXTERNAL"

	// ErrorTypeData indicates a malformed payload from an external
	// collaborator, e.g. a judgment response that is not valid JSON
	ErrorTypeData ErrorType = "DATA"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type      ErrorType
	Message   string
	Retryable bool
	Err       error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewExternalError creates a new external service error.
// External failures are considered retryable by callers.
func NewExternalError(message string, err error) *AppError {
	return &AppError{
		Type:      ErrorTypeExternal,
		Message:   message,
		Retryable: true,
		Err:       err,
	}
}

// NewDataError creates an error for malformed external payloads
func NewDataError(message string, err error) *AppError {
	return &AppError{
		Type:      ErrorTypeData,
		Message:   message,
		Retryable: true,
		Err:       err,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// TypeOf returns the AppError type of err, or ErrorTypeInternal when err
// is not an AppError.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsRetryable reports whether err is an AppError marked retryable.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}
