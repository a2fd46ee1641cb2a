// Package errors defines the typed failures of the ring analysis pipeline.
//
// Every per-image failure carries an ErrorType so batch runs can record a
// skip reason without string matching.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeNoCircleFound     ErrorType = "no_circle_found"
	ErrorTypeRingNotVisible    ErrorType = "ring_not_visible"
	ErrorTypeDegenerateProfile ErrorType = "degenerate_profile"
	ErrorTypeZeroIntensity     ErrorType = "zero_intensity_division"
	ErrorTypeIO                ErrorType = "io_failure"
	ErrorTypeOutOfBounds       ErrorType = "out_of_bounds"
	ErrorTypeTimeout           ErrorType = "timeout"
	ErrorTypeValidation        ErrorType = "validation"
	ErrorTypeInternal          ErrorType = "internal"
)

// AppError represents a structured pipeline error
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails returns a copy of e carrying extra context.
func (e *AppError) WithDetails(format string, args ...interface{}) *AppError {
	c := *e
	c.Details = fmt.Sprintf(format, args...)
	return &c
}

func newError(t ErrorType, message string, cause error) *AppError {
	return &AppError{Type: t, Message: message, Cause: cause}
}

// NewNoCircleFoundError reports that the Hough transform produced no peak.
func NewNoCircleFoundError(message string) *AppError {
	return newError(ErrorTypeNoCircleFound, message, nil)
}

// NewRingNotVisibleError reports a validator rejection. The analyzer surfaces
// rejections as a result status; this error type exists for batch reasons.
func NewRingNotVisibleError(message string) *AppError {
	return newError(ErrorTypeRingNotVisible, message, nil)
}

// NewDegenerateProfileError reports an empty interior or exterior window.
func NewDegenerateProfileError(message string) *AppError {
	return newError(ErrorTypeDegenerateProfile, message, nil)
}

// NewZeroIntensityError reports a zero background average in the score formula.
func NewZeroIntensityError(message string) *AppError {
	return newError(ErrorTypeZeroIntensity, message, nil)
}

// NewIOError wraps a file that could not be read or decoded.
func NewIOError(message string, cause error) *AppError {
	return newError(ErrorTypeIO, message, cause)
}

// NewOutOfBoundsError reports a crop that cannot fit inside the image.
func NewOutOfBoundsError(message string) *AppError {
	return newError(ErrorTypeOutOfBounds, message, nil)
}

// NewTimeoutError wraps a context cancellation or deadline.
func NewTimeoutError(message string, cause error) *AppError {
	return newError(ErrorTypeTimeout, message, cause)
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return newError(ErrorTypeValidation, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return newError(ErrorTypeInternal, message, cause)
}

// IsType checks if the error chain contains an AppError of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// TypeOf returns the ErrorType of the first AppError in the chain, or
// ErrorTypeInternal for foreign errors.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}
