package junction

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error conditions of the intersection
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// Car direction is outside the enumeration
	ErrCodeInvalidDirection
	// Intersection configuration is invalid
	ErrCodeInvalidConfiguration
	// Run was called on an intersection that already ran
	ErrCodeAlreadyRan
	// Lane buffer held more cars than its capacity
	ErrCodeBufferOverflow
	// Car taken from an empty lane buffer
	ErrCodeBufferUnderflow
	// Lane crossed more cars than it expected
	ErrCodeCrossingOverrun
	// Quadrant locks requested out of increasing order
	ErrCodeLockOrder
	// Two cars occupied the same quadrant at once
	ErrCodeExclusionViolated
	// Schedule record could not be parsed
	ErrCodeMalformedRecord
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeNone:
		return "none"
	case ErrCodeInvalidDirection:
		return "invalid_direction"
	case ErrCodeInvalidConfiguration:
		return "invalid_configuration"
	case ErrCodeAlreadyRan:
		return "already_ran"
	case ErrCodeBufferOverflow:
		return "buffer_overflow"
	case ErrCodeBufferUnderflow:
		return "buffer_underflow"
	case ErrCodeCrossingOverrun:
		return "crossing_overrun"
	case ErrCodeLockOrder:
		return "lock_order"
	case ErrCodeExclusionViolated:
		return "exclusion_violated"
	case ErrCodeMalformedRecord:
		return "malformed_record"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

// ConfigurationError represents an intersection that cannot be built
type ConfigurationError struct {
	Component string
	Issue     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Issue)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(component, issue string) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Issue:     issue,
	}
}

// CarError represents a car rejected at setup
type CarError struct {
	Code    ErrorCode
	CarID   int
	Message string
}

func (e *CarError) Error() string {
	return fmt.Sprintf("car error [%d]: %s", e.CarID, e.Message)
}

// NewInvalidDirectionError creates an error for a car whose entry or exit
// direction is unknown
func NewInvalidDirectionError(carID int, field string, d Direction) *CarError {
	return &CarError{
		Code:    ErrCodeInvalidDirection,
		CarID:   carID,
		Message: fmt.Sprintf("invalid %s direction %d", field, int(d)),
	}
}

// RunError represents misuse of the intersection lifecycle
type RunError struct {
	Code      ErrorCode
	Operation string
	Message   string
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run error during %s: %s", e.Operation, e.Message)
}

// NewAlreadyRanError creates an error for a second call to Run
func NewAlreadyRanError(operation string) *RunError {
	return &RunError{
		Code:      ErrCodeAlreadyRan,
		Operation: operation,
		Message:   "intersection has already run",
	}
}

// InvariantError reports a broken synchronization invariant. It is raised
// with panic and never returned: once an invariant fails, mutual exclusion
// or deadlock freedom can no longer be trusted.
type InvariantError struct {
	Code    ErrorCode
	Lane    Direction
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated [%s] on lane %s: %s", e.Code, e.Lane, e.Message)
}

// NewInvariantError creates a new invariant error
func NewInvariantError(code ErrorCode, lane Direction, message string) *InvariantError {
	return &InvariantError{
		Code:    code,
		Lane:    lane,
		Message: message,
	}
}

func violate(code ErrorCode, lane Direction, format string, args ...any) {
	panic(NewInvariantError(code, lane, fmt.Sprintf(format, args...)))
}

// IsConfigurationError checks if an error is a ConfigurationError
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsCarError checks if an error is a CarError
func IsCarError(err error) bool {
	var target *CarError
	return errors.As(err, &target)
}

// IsRunError checks if an error is a RunError
func IsRunError(err error) bool {
	var target *RunError
	return errors.As(err, &target)
}

// IsInvariantError checks if an error is an InvariantError
func IsInvariantError(err error) bool {
	var target *InvariantError
	return errors.As(err, &target)
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	var (
		carErr       *CarError
		runErr       *RunError
		invariantErr *InvariantError
		configErr    *ConfigurationError
		codedErr     interface{ ErrorCode() ErrorCode }
	)
	switch {
	case errors.As(err, &carErr):
		return carErr.Code
	case errors.As(err, &runErr):
		return runErr.Code
	case errors.As(err, &invariantErr):
		return invariantErr.Code
	case errors.As(err, &configErr):
		return ErrCodeInvalidConfiguration
	case errors.As(err, &codedErr):
		return codedErr.ErrorCode()
	default:
		return ErrCodeNone
	}
}
