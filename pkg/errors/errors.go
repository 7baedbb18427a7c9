package errors

import (
	"fmt"
)

// ErrorType defines different categories of errors
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "VALIDATION"
	ErrorTypeNotFound      ErrorType = "NOT_FOUND"
	ErrorTypeQuota         ErrorType = "QUOTA_EXCEEDED"
	ErrorTypeThrottled     ErrorType = "THROTTLED"
	ErrorTypeRemote        ErrorType = "REMOTE_SERVICE"
	ErrorTypeConfiguration ErrorType = "CONFIGURATION"
	ErrorTypeInternal      ErrorType = "INTERNAL"
)

// AppError is the custom error type for the application
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work
func (e *AppError) Unwrap() error {
	return e.Err
}

// Constructor functions for different error types

// NewValidation creates a validation error
func NewValidation(message string) error {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewValidationf creates a validation error with a formatted message
func NewValidationf(format string, args ...interface{}) error {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewNotFound creates a not found error for a dangling reference
func NewNotFound(message string) error {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewQuota creates a quota exceeded error
func NewQuota(message string) error {
	return &AppError{
		Type:    ErrorTypeQuota,
		Message: message,
	}
}

// NewThrottled creates a throttled error from an upstream rate-limit signal
func NewThrottled(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeThrottled,
		Message: message,
		Err:     err,
	}
}

// NewRemote creates a remote service error
func NewRemote(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeRemote,
		Message: message,
		Err:     err,
	}
}

// NewConfiguration creates a configuration error
func NewConfiguration(message string) error {
	return &AppError{
		Type:    ErrorTypeConfiguration,
		Message: message,
	}
}

// NewInternal creates an internal error
func NewInternal(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, preserve the type
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Type:    appErr.Type,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     appErr.Err,
		}
	}

	// Otherwise, create an internal error
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// TypeOf returns the error type, or ErrorTypeInternal for foreign errors
func TypeOf(err error) ErrorType {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// Type checking functions

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == ErrorTypeValidation
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == ErrorTypeNotFound
}

// IsQuota checks if an error is a quota exceeded error
func IsQuota(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == ErrorTypeQuota
}

// IsThrottled checks if an error is a throttled error
func IsThrottled(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == ErrorTypeThrottled
}

// IsRemote checks if an error is a remote service error
func IsRemote(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == ErrorTypeRemote
}

// IsConfiguration checks if an error is a configuration error
func IsConfiguration(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == ErrorTypeConfiguration
}

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == ErrorTypeInternal
}

// IsRetryable reports whether the caller may retry the operation later.
// Throttled and remote failures are transient; everything else is not.
func IsRetryable(err error) bool {
	switch TypeOf(err) {
	case ErrorTypeThrottled, ErrorTypeRemote:
		return true
	default:
		return false
	}
}
