package request

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is matched by every [InputError].
	ErrInvalidInput = errors.New("invalid request input")
	// ErrInvalidURL is returned when the composed URL is not a valid absolute URL.
	ErrInvalidURL = errors.New("invalid request url")
	// ErrUnknownTask is returned for a [Task] outside the defined set.
	ErrUnknownTask = errors.New("unknown task")
)

// InputError reports caller input rejected before any request is sent.
type InputError struct {
	Msg string
	Err error
}

// NewInputError returns an *InputError with a formatted message.
func NewInputError(err error, format string, args ...any) *InputError {
	return &InputError{Msg: fmt.Sprintf(format, args...), Err: err}
}

func (e *InputError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %s", ErrInvalidInput, e.Msg)
	}

	return fmt.Sprintf("%v: %s: %v", ErrInvalidInput, e.Msg, e.Err)
}

func (e *InputError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidInput}
	}

	return []error{ErrInvalidInput, e.Err}
}
