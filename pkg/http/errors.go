package http

import (
	"fmt"
	"net/http"
)

// Error codes carried in the response envelope.
const (
	CodeNotFound    = "ERR_NOT_FOUND"
	CodeLoadFailed  = "ERR_LOAD_FAILED"
	CodeUnavailable = "ERR_UNAVAILABLE"
	CodeInternal    = "ERR_INTERNAL"
)

// AppError is an API error and the HTTP status it maps to. Err is the cause;
// it is logged but never rendered.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
	Status  int            `json:"-"`
	Err     error          `json:"-"`
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

// WithParam attaches a detail the client can act on.
func (e *AppError) WithParam(key string, value any) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]any)
	}
	e.Params[key] = value
	return e
}

func newAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: err}
}

// NotFoundError creates a 404 error; err may be nil.
func NotFoundError(message string, err error) *AppError {
	return newAppError(CodeNotFound, message, http.StatusNotFound, err)
}

// LoadFailedError creates the 502 returned when an upstream report could not
// be loaded. Every upstream cause renders the same generic message.
func LoadFailedError(err error) *AppError {
	return newAppError(CodeLoadFailed, "load failed", http.StatusBadGateway, err)
}

// UnavailableError creates the 503 returned when the client gave up before
// the report was ready.
func UnavailableError(err error) *AppError {
	return newAppError(CodeUnavailable, "request cancelled", http.StatusServiceUnavailable, err)
}

// InternalError wraps an unexpected error as a 500.
func InternalError(err error) *AppError {
	return newAppError(CodeInternal, "internal error", http.StatusInternalServerError, err)
}
