// Package apperror is the error currency crossing the service boundary.
// Every error a handler can show a caller is an *AppError; anything else
// is reported as an internal error and its text never leaves the process.
package apperror

import (
	"errors"
	"net/http"
	"sort"
)

// AppError carries the HTTP status a failure maps to, a caller-safe
// message and, for validation failures, the offending fields.
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`

	cause error
}

// FieldError is one field-keyed validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.cause }

// Is matches any AppError with the same status, so callers can test
// errors.Is(err, apperror.ErrNotFound) against a resource-specific error.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Fields returns the validation errors keyed by field name.
func (e *AppError) Fields() map[string]string {
	out := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		out[fe.Field] = fe.Message
	}
	return out
}

var (
	ErrNotFound       = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrForbidden      = &AppError{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrPublicReadOnly = &AppError{Code: http.StatusForbidden, Message: "Public scope is read-only"}
)

func NewAppError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap keeps cause for logs and errors.Is while callers only see message.
func Wrap(cause error, code int, message string) *AppError {
	return &AppError{Code: code, Message: message, cause: cause}
}

func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewFieldValidationError builds a validation error from a field-keyed map.
// Fields are sorted so responses are stable.
func NewFieldValidationError(fields map[string]string) *AppError {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fieldErrors := make([]FieldError, 0, len(keys))
	for _, k := range keys {
		fieldErrors = append(fieldErrors, FieldError{Field: k, Message: fields[k]})
	}
	return NewValidationError(fieldErrors)
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: resource + " not found"}
}

func NewBadRequestError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError returns the AppError in err's chain, or a 500 carrying err.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, http.StatusInternalServerError, ErrInternalServer.Message)
}
