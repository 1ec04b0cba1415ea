// Package apierr defines the service-wide error taxonomy and its single
// mapping to HTTP status codes.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodePolicyViolation Code = "POLICY_VIOLATION"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeInternal        Code = "INTERNAL"
)

// Error is a client-visible error. Extra carries additional fields merged
// into the response body, e.g. computed distance for out-of-range scans.
type Error struct {
	Code    Code
	Message string
	Extra   map[string]any
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func Invalid(msg string) *Error  { return &Error{Code: CodeInvalidArgument, Message: msg} }
func NotFound(msg string) *Error { return &Error{Code: CodeNotFound, Message: msg} }
func Conflict(msg string) *Error { return &Error{Code: CodeConflict, Message: msg} }
func Policy(msg string) *Error   { return &Error{Code: CodePolicyViolation, Message: msg} }
func Internal(msg string) *Error { return &Error{Code: CodeInternal, Message: msg} }

// WithExtra attaches an additional response field and returns e.
func (e *Error) WithExtra(key string, val any) *Error {
	if e.Extra == nil {
		e.Extra = map[string]any{}
	}
	e.Extra[key] = val
	return e
}

// HTTPStatus maps an error to the status its response carries.
func HTTPStatus(err error) int {
	var api *Error
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument, CodePolicyViolation:
			return http.StatusBadRequest
		case CodeNotFound:
			return http.StatusNotFound
		case CodeConflict:
			return http.StatusConflict
		case CodeUnauthenticated:
			return http.StatusUnauthorized
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

// Body builds the JSON error body: {"error": message, ...extra}.
func Body(err error) map[string]any {
	var api *Error
	if errors.As(err, &api) {
		body := map[string]any{"error": api.Message}
		for k, v := range api.Extra {
			body[k] = v
		}
		return body
	}
	return map[string]any{"error": "internal error"}
}
