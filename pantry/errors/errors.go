// errors/errors.go
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a structured application error with a machine-readable code,
// a human-readable message and the HTTP status it maps to.
type Error struct {
	// Code is a machine-readable error code (e.g., "not_found", "validation_failed")
	Code string `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Status is the HTTP status code (not included in JSON)
	Status int `json:"-"`

	// Details contains additional error context (optional)
	Details map[string]any `json:"details,omitempty"`

	// Err is the underlying error (not included in JSON)
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Extensions exposes the code and details to GraphQL clients under the
// "extensions" key of a response error.
func (e *Error) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.Code}
	for k, v := range e.Details {
		ext[k] = v
	}
	return ext
}

// WithDetail adds a single detail to the error.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Wrap attaches an underlying error.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// HTTPStatus returns the HTTP status code for the error.
func (e *Error) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// New creates a new Error with code, message, and HTTP status.
func New(code, message string, status int) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// From extracts an *Error from err if possible, or wraps it as an internal error.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{
		Code:    CodeInternalError,
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// HasCode reports whether err carries an *Error with the given code.
func HasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// Error codes.
const (
	CodeBadRequest           = "bad_request"
	CodeUnauthorized         = "unauthorized"
	CodeNotFound             = "not_found"
	CodeMethodNotAllowed     = "method_not_allowed"
	CodeInternalError        = "internal_error"
	CodeValidationFailed     = "validation_failed"
	CodeAlreadyExists        = "already_exists"
	CodeDecodeFailed         = "decode_failed"
	CodeAuthenticationFailed = "authentication_failed"
)

// BadRequest creates a 400 Bad Request error.
func BadRequest(message string) *Error {
	return New(CodeBadRequest, message, http.StatusBadRequest)
}

// Unauthorized creates a 401 error for missing or unusable credentials.
func Unauthorized(message string) *Error {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

// NotFound creates a 404 error for a lookup that matched nothing.
func NotFound(message string) *Error {
	return New(CodeNotFound, message, http.StatusNotFound)
}

// MethodNotAllowed creates a 405 Method Not Allowed error.
func MethodNotAllowed(message string) *Error {
	return New(CodeMethodNotAllowed, message, http.StatusMethodNotAllowed)
}

// Internal creates a 500 Internal Server Error.
func Internal(message string) *Error {
	return New(CodeInternalError, message, http.StatusInternalServerError)
}

// Validation creates a 400 error for malformed input.
func Validation(message string) *Error {
	return New(CodeValidationFailed, message, http.StatusBadRequest)
}

// AlreadyExists creates a 409 error for a natural-key collision.
func AlreadyExists(message string) *Error {
	return New(CodeAlreadyExists, message, http.StatusConflict)
}

// Decode creates a 500 error for a stored document that does not fit its
// entity shape.
func Decode(message string) *Error {
	return New(CodeDecodeFailed, message, http.StatusInternalServerError)
}

// AuthenticationFailed creates a 401 error for rejected credentials. The
// code distinguishes the sign-in outcomes (e.g. "sign_in_banned").
func AuthenticationFailed(code, message string) *Error {
	return New(code, message, http.StatusUnauthorized)
}
