package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation   = "validation"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeUnavailable  = "unavailable"
	CodeInternal     = "internal"
)

type Error struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func statusForCode(code string) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func newError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Status: statusForCode(code), Err: err}
}

func Validation(message string) error   { return newError(CodeValidation, message, nil) }
func Unauthorized(message string) error { return newError(CodeUnauthorized, message, nil) }
func Forbidden(message string) error    { return newError(CodeForbidden, message, nil) }
func NotFound(message string) error     { return newError(CodeNotFound, message, nil) }
func Conflict(message string) error     { return newError(CodeConflict, message, nil) }

func Unavailable(message string, err error) error { return newError(CodeUnavailable, message, err) }
func Internal(message string, err error) error    { return newError(CodeInternal, message, err) }

func InvalidJSON(err error) error {
	return newError(CodeValidation, "invalid json: "+err.Error(), nil)
}

// As extracts the coded error from err. Anything uncoded is reported as internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return newError(CodeInternal, "internal error", err)
}

func Is(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
