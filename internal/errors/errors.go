package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies an application error. The driver loop dispatches on
// the type to decide between abort-file, drop-row, degrade-feature and
// skip-output behavior.
type ErrorType string

const (
	// ErrTypeMissingColumn means a required column could not be resolved
	// by keyword matching. Processing of the current file aborts; other
	// files continue.
	ErrTypeMissingColumn ErrorType = "MISSING_COLUMN"
	// ErrTypeUnparsableDate means a row's date could not be normalized.
	// The row is excluded from aggregation; never fatal.
	ErrTypeUnparsableDate ErrorType = "UNPARSABLE_DATE"
	// ErrTypeMissingSource means an optional annotation source (event
	// workbook, standard table) is absent or malformed. The feature
	// degrades to "no annotation".
	ErrTypeMissingSource ErrorType = "MISSING_SOURCE"
	// ErrTypeEmptyResult means aggregation or extraction yielded zero
	// rows. Chart generation is skipped for that unit/pen with a logged
	// reason.
	ErrTypeEmptyResult ErrorType = "EMPTY_RESULT"

	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// AppError is the application error carrying a type, a message, an
// optional cause and free-form context for logging.
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

// NewMissingColumnError reports an unresolved column role. The available
// header names are included so the operator can see what the file actually
// contained before fixing the keyword configuration.
func NewMissingColumnError(role string, available []string) *AppError {
	return NewAppError(ErrTypeMissingColumn,
		fmt.Sprintf("no column matched role %q (available: %s)", role, strings.Join(available, ", ")),
		nil).WithContext("role", role).WithContext("available_columns", available)
}

// NewUnparsableDateError reports a date value that failed normalization.
func NewUnparsableDateError(value string, cause error) *AppError {
	return NewAppError(ErrTypeUnparsableDate,
		fmt.Sprintf("cannot normalize date value %q", value), cause).
		WithContext("value", value)
}

// NewMissingSourceError reports an absent or malformed optional source.
func NewMissingSourceError(source string, cause error) *AppError {
	return NewAppError(ErrTypeMissingSource,
		fmt.Sprintf("annotation source %s unavailable", source), cause).
		WithContext("source", source)
}

// NewEmptyResultError reports a zero-row aggregation or extraction result.
func NewEmptyResultError(subject string) *AppError {
	return NewAppError(ErrTypeEmptyResult,
		fmt.Sprintf("%s produced no rows", subject), nil).
		WithContext("subject", subject)
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

// IsType reports whether err (or anything it wraps) is an AppError of the
// given type.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// IsMissingColumn reports whether err is a MISSING_COLUMN error.
func IsMissingColumn(err error) bool { return IsType(err, ErrTypeMissingColumn) }

// IsUnparsableDate reports whether err is an UNPARSABLE_DATE error.
func IsUnparsableDate(err error) bool { return IsType(err, ErrTypeUnparsableDate) }

// IsMissingSource reports whether err is a MISSING_SOURCE error.
func IsMissingSource(err error) bool { return IsType(err, ErrTypeMissingSource) }

// IsEmptyResult reports whether err is an EMPTY_RESULT error.
func IsEmptyResult(err error) bool { return IsType(err, ErrTypeEmptyResult) }
