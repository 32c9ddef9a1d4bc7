// Package apierr carries the error contract the HTTP layer exposes: an HTTP
// status, a stable numeric code, and a human-readable message. Services
// return *Error for caller faults; anything else is treated as internal.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInternal   = 1000
	CodeNotFound   = 1003
	CodeValidation = 1004
)

type Error struct {
	Status  int
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: message}
}

func Validation(message string) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Code: CodeValidation, Message: message}
}

func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "internal server error", Err: err}
}

// From extracts an *Error from err, or wraps err as internal.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(err)
}

// IsValidation reports whether err is a caller validation fault.
func IsValidation(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == CodeValidation
}

// IsNotFound reports whether err is a missing-resource fault.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == CodeNotFound
}
