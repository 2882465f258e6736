package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// maxErrBodySize caps the amount of response body read when
// building an error for an unexpected status code. This prevents
// unbounded memory usage when a large response arrives with a
// wrong status.
const maxErrBodySize = 4 << 10 // 4KB

var (
	// ErrUnexpectedStatusCode is the sentinel error wrapped by [UnexpectedStatusError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrAuthFailure is joined with [ErrUnexpectedStatusCode] when the server
	// responds with 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
	// ErrAborted is the sentinel error wrapped by [AbortError].
	ErrAborted = errors.New("request aborted")
	// ErrFetch wraps transport failures that are not aborts.
	ErrFetch = errors.New("error fetching")
)

// UnexpectedStatusError is returned when the API responds with a non-2xx
// status. Message and Details are populated from the API's JSON error body
// when present.
type UnexpectedStatusError struct {
	URL        string
	StatusCode int
	Status     string
	Body       string
	Message    string
	Details    []json.RawMessage
	Err        error
}

func (e *UnexpectedStatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Body
	}

	return fmt.Sprintf("%v fetching from %s: [%s] %s", e.Err, e.URL, e.Status, msg)
}

func (e *UnexpectedStatusError) Unwrap() error {
	return e.Err
}

// AbortError is returned when the request context or its cancellation
// signal fires while the request is in flight. Err holds the cause.
type AbortError struct {
	URL string
	Err error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("request aborted when fetching %s: %v", e.URL, e.Err)
}

func (e *AbortError) Unwrap() []error {
	return []error{ErrAborted, e.Err}
}

type apiErrorEnvelope struct {
	Error *struct {
		Code    int               `json:"code"`
		Message string            `json:"message"`
		Status  string            `json:"status"`
		Details []json.RawMessage `json:"details"`
	} `json:"error"`
}
