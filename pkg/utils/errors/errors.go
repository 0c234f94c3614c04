package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies a library failure
type ErrorType uint

const (
	// ErrorTypeUnknown represents an unclassified error
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeInvalidArgument represents a caller precondition violation
	ErrorTypeInvalidArgument
	// ErrorTypeNonConvergence represents a root-finder exhausting its iteration budget
	ErrorTypeNonConvergence
	// ErrorTypeArbitrage represents arbitrage detected in input quotes under the Fail policy
	ErrorTypeArbitrage
	// ErrorTypeInternal represents an internal error
	ErrorTypeInternal
)

// AppError carries a typed error through the calibration and pricing stack
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error returns the error message
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new untyped error
func New(message string) error {
	return &AppError{
		Type:    ErrorTypeUnknown,
		Message: message,
	}
}

// Newf creates a new untyped error from a format string
func Newf(format string, args ...interface{}) error {
	return &AppError{
		Type:    ErrorTypeUnknown,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with a message, preserving the inner type
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Type:    appErr.Type,
			Message: message,
			Err:     err,
		}
	}
	return &AppError{
		Type:    ErrorTypeUnknown,
		Message: message,
		Err:     err,
	}
}

// Wrapf wraps an error with a formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// InvalidArgument creates a precondition-violation error
func InvalidArgument(message string) error {
	return &AppError{
		Type:    ErrorTypeInvalidArgument,
		Message: message,
	}
}

// InvalidArgumentf creates a precondition-violation error from a format string
func InvalidArgumentf(format string, args ...interface{}) error {
	return InvalidArgument(fmt.Sprintf(format, args...))
}

// NonConvergence creates a solver non-convergence error
func NonConvergence(message string) error {
	return &AppError{
		Type:    ErrorTypeNonConvergence,
		Message: message,
	}
}

// Arbitrage creates an arbitrage-in-quotes error
func Arbitrage(message string) error {
	return &AppError{
		Type:    ErrorTypeArbitrage,
		Message: message,
	}
}

// Internal creates an internal error
func Internal(message string) error {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
	}
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown for foreign errors
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// IsInvalidArgument reports whether err is a precondition violation
func IsInvalidArgument(err error) bool {
	return TypeOf(err) == ErrorTypeInvalidArgument
}

// IsNonConvergence reports whether err is a solver non-convergence failure
func IsNonConvergence(err error) bool {
	return TypeOf(err) == ErrorTypeNonConvergence
}

// IsArbitrage reports whether err is an arbitrage-in-quotes failure
func IsArbitrage(err error) bool {
	return TypeOf(err) == ErrorTypeArbitrage
}
