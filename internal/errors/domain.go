package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the analytics core. Callers match them with errors.Is
// and decide how fatal they are: a missing dataset kills the session, a bad
// aggregation only fails the view that asked for it, and an empty filtered
// subset is a distinct "no data" state rather than a zero-valued result.
var (
	// ErrDataUnavailable means the source file is missing or unreadable.
	// Fatal: there is no partial dashboard without the canonical table.
	ErrDataUnavailable = errors.New("dataset unavailable")

	// ErrInvalidAggregation means sum/mean was requested on a column that
	// does not hold numbers. Recoverable and local to the requesting view.
	ErrInvalidAggregation = errors.New("invalid aggregation")

	// ErrUnknownColumn means a column reference did not match the schema.
	// Rejected at the boundary, never deep inside aggregation.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrNoData means the filtered subset is empty, so summary statistics
	// are undefined. Not an error state for the dashboard as a whole.
	ErrNoData = errors.New("no data for current filters")
)

// ErrorType classifies application errors for logging and HTTP mapping.
type ErrorType string

const (
	ErrTypeDataset     ErrorType = "DATASET"
	ErrTypeParsing     ErrorType = "PARSING"
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeAggregation ErrorType = "AGGREGATION"
	ErrTypeNotFound    ErrorType = "NOT_FOUND"
	ErrTypeStorage     ErrorType = "STORAGE"
	ErrTypeConfig      ErrorType = "CONFIG"
)

// AppError carries a classified error with an optional cause and context.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewDataUnavailableError wraps ErrDataUnavailable with source detail.
func NewDataUnavailableError(source string, cause error) *AppError {
	return NewAppError(ErrTypeDataset, fmt.Sprintf("cannot read dataset %q", source), fmt.Errorf("%w: %v", ErrDataUnavailable, cause))
}

// NewInvalidAggregationError wraps ErrInvalidAggregation for a column/function
// pair the schema cannot satisfy.
func NewInvalidAggregationError(fn, column string) *AppError {
	return NewAppError(ErrTypeAggregation, fmt.Sprintf("%s over non-numeric column %q", fn, column), ErrInvalidAggregation)
}

// NewUnknownColumnError wraps ErrUnknownColumn for a name outside the schema.
func NewUnknownColumnError(name string) *AppError {
	return NewAppError(ErrTypeValidation, fmt.Sprintf("column %q is not part of the dataset schema", name), ErrUnknownColumn)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
