// Package errs defines the errors handlers return and how they are
// rendered in the API's JSON error envelope.
package errs

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
)

// Error represents an error in the system.
type Error struct {
	Code     int
	Message  string
	FuncName string
	FileName string
	InnerErr bool
}

// New constructs an error reported to the caller with code.
func New(code int, err error) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		Code:     code,
		Message:  err.Error(),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

// Newf is New with a formatted message.
func Newf(code int, format string, args ...any) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

// NewInternal creates an error that is not intended
// to be seen by users.
func NewInternal(err error) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		Code:     http.StatusInternalServerError,
		Message:  err.Error(),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
		InnerErr: true,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// IsInternal returns true if the error is internal.
func (e *Error) IsInternal() bool {
	return e.InnerErr
}

// Status returns the canonical status name for the error's code.
func (e *Error) Status() string {
	if s, ok := statuses[e.Code]; ok {
		return s
	}

	return "UNKNOWN"
}

// MarshalJSON renders the error envelope:
//
//	{"error":{"code":404,"message":"...","status":"NOT_FOUND"}}
func (e *Error) MarshalJSON() ([]byte, error) {
	type body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	}

	return json.Marshal(struct {
		Error body `json:"error"`
	}{
		Error: body{Code: e.Code, Message: e.Message, Status: e.Status()},
	})
}

var statuses = map[int]string{
	http.StatusBadRequest:            "INVALID_ARGUMENT",
	http.StatusUnauthorized:          "UNAUTHENTICATED",
	http.StatusForbidden:             "PERMISSION_DENIED",
	http.StatusNotFound:              "NOT_FOUND",
	http.StatusConflict:              "ALREADY_EXISTS",
	http.StatusRequestEntityTooLarge: "INVALID_ARGUMENT",
	http.StatusTooManyRequests:       "RESOURCE_EXHAUSTED",
	http.StatusInternalServerError:   "INTERNAL",
	http.StatusNotImplemented:        "UNIMPLEMENTED",
	http.StatusServiceUnavailable:    "UNAVAILABLE",
}
