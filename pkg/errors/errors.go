package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed error that knows how to present itself over HTTP.
type Error struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Status  int               `json:"status"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on the error code so wrapped clones still satisfy errors.Is against the sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// WrapAs wraps err using the code and status of a sentinel.
func WrapAs(err error, sentinel *Error, message string) *Error {
	return Wrap(err, sentinel.Code, sentinel.Status, message)
}

// Predefined errors.
var (
	ErrNetwork       = New("NETWORK_FAILURE", http.StatusBadGateway, "request to backend failed")
	ErrValidation    = New("VALIDATION_ERROR", http.StatusUnprocessableEntity, "validation failed")
	ErrLocked        = New("TUITION_LOCKED", http.StatusConflict, "tuition can no longer be changed")
	ErrBusy          = New("REQUEST_IN_FLIGHT", http.StatusConflict, "a request is already in progress")
	ErrSubFlowClosed = New("SUBFLOW_CLOSED", http.StatusConflict, "dialog is not open")
	ErrNotFound      = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrUnauthorized  = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrBadRequest    = New("BAD_REQUEST", http.StatusBadRequest, "bad request")
	ErrInternal      = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Validation builds a validation error carrying per-field messages.
func Validation(message string, fields map[string]string) *Error {
	clone := Clone(ErrValidation, message)
	clone.Fields = fields
	return clone
}
