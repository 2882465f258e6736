package request

import (
	"errors"
	"time"

	"github.com/adamwoolhether/genai/abort"
	"github.com/adamwoolhether/genai/client"
)

// Defaults used when Options leave BaseURL or APIVersion empty.
var (
	DefaultBaseURL    = "https://generativelanguage.googleapis.com"
	DefaultAPIVersion = "v1beta"
)

// Options holds per-request configuration. Build it with [NewOptions].
type Options struct {
	// APIVersion overrides DefaultAPIVersion.
	APIVersion string
	// BaseURL overrides DefaultBaseURL.
	BaseURL string
	// APIClient is prepended to the x-goog-api-client header value.
	APIClient string
	// CustomHeaders is an http.Header, map[string]string,
	// map[string][]string or [][2]string. It is converted and validated
	// by [Headers].
	CustomHeaders any
	// Timeout, when set and non-negative, aborts the request after it elapses.
	Timeout *time.Duration
	// Signal aborts the request when it fires.
	Signal *abort.Signal
	// Fetch replaces the default transport.
	Fetch client.FetchFunc
}

// Option is a functional option for [Options].
type Option func(*Options) error

// NewOptions applies opts in order; later options win.
func NewOptions(opts ...Option) (Options, error) {
	var o Options
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return Options{}, err
		}
	}

	return o, nil
}

func (o Options) baseURL() string {
	if o.BaseURL != "" {
		return o.BaseURL
	}

	return DefaultBaseURL
}

func (o Options) apiVersion() string {
	if o.APIVersion != "" {
		return o.APIVersion
	}

	return DefaultAPIVersion
}

// WithAPIVersion overrides the API version path segment.
func WithAPIVersion(version string) Option {
	return func(o *Options) error {
		o.APIVersion = version
		return nil
	}
}

// WithBaseURL overrides the API host.
func WithBaseURL(baseURL string) Option {
	return func(o *Options) error {
		o.BaseURL = baseURL
		return nil
	}
}

// WithAPIClient adds a token to the client identification header.
func WithAPIClient(apiClient string) Option {
	return func(o *Options) error {
		o.APIClient = apiClient
		return nil
	}
}

// WithCustomHeaders sets extra headers. See [Options.CustomHeaders] for
// the accepted types.
func WithCustomHeaders(headers any) Option {
	return func(o *Options) error {
		o.CustomHeaders = headers
		return nil
	}
}

// WithTimeout aborts the request once d elapses. Zero aborts as soon as
// the timer runs.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) error {
		if d < 0 {
			return NewInputError(nil, "timeout must not be negative")
		}
		o.Timeout = &d
		return nil
	}
}

// WithSignal aborts the request when sig fires.
func WithSignal(sig *abort.Signal) Option {
	return func(o *Options) error {
		if sig == nil {
			return NewInputError(errors.New("nil signal"), "signal must not be nil")
		}
		o.Signal = sig
		return nil
	}
}

// WithFetch sends requests through fn instead of [client.Fetch].
func WithFetch(fn client.FetchFunc) Option {
	return func(o *Options) error {
		if fn == nil {
			return NewInputError(errors.New("nil fetch func"), "fetch must not be nil")
		}
		o.Fetch = fn
		return nil
	}
}
