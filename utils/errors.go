package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an application error and decides its HTTP status
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindUnavailable
)

// Status returns the HTTP status code for the kind.
// Business-rule conflicts are reported as 400.
func (k ErrorKind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// FieldError describes a single invalid request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is the error type returned by services and mapped to the response envelope
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Fields  []FieldError
	Data    map[string]interface{} // template data for the localized message
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithData attaches template data used when localizing the message
func (e *AppError) WithData(data map[string]interface{}) *AppError {
	e.Data = data
	return e
}

// NewValidationError reports invalid input, optionally with per-field details
func NewValidationError(message string, fields ...FieldError) *AppError {
	return &AppError{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: message, Fields: fields}
}

// NewFieldError reports a single invalid field
func NewFieldError(field, message string) *AppError {
	return NewValidationError("Invalid request data", FieldError{Field: field, Message: message})
}

// NewAuthenticationError reports a missing or invalid credential
func NewAuthenticationError(message string) *AppError {
	return &AppError{Kind: KindAuthentication, Code: "UNAUTHORIZED", Message: message}
}

// NewAuthorizationError reports an authenticated caller lacking permission
func NewAuthorizationError(message string) *AppError {
	return &AppError{Kind: KindAuthorization, Code: "FORBIDDEN", Message: message}
}

// NewNotFoundError reports a missing entity, e.g. NewNotFoundError("Order")
func NewNotFoundError(entity string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Code:    "NOT_FOUND",
		Message: entity + " not found",
		Data:    map[string]interface{}{"Entity": entity},
	}
}

// NewConflictError reports a violated business rule
func NewConflictError(code, message string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: message}
}

// NewInternalError wraps an unexpected failure
func NewInternalError(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: message, Err: err}
}

// NewUnavailableError reports a feature whose backing service is not configured
func NewUnavailableError(code, message string) *AppError {
	return &AppError{Kind: KindUnavailable, Code: code, Message: message}
}

// AsAppError converts any error into an AppError, wrapping unknown errors as internal
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("Internal server error", err)
}

// IsKind reports whether err is an AppError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}
