package request_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/genai/request"
)

func headersFor(t *testing.T, opts request.Options) (http.Header, error) {
	t.Helper()

	u, err := request.NewCachedContentURL(request.TaskGet, "my-key", opts)
	if err != nil {
		t.Fatalf("building url: %v", err)
	}

	return request.Headers(u)
}

func TestHeaders_IdentityOnly(t *testing.T) {
	h, err := headersFor(t, request.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exp := http.Header{
		"X-Goog-Api-Key":    {"my-key"},
		"X-Goog-Api-Client": {"genai-go/" + request.Version},
	}
	if diff := cmp.Diff(exp, h); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
}

func TestHeaders_APIClient(t *testing.T) {
	h, err := headersFor(t, request.Options{APIClient: "my-app/2.0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, exp := h.Get(request.HeaderAPIClient), "my-app/2.0 genai-go/"+request.Version; got != exp {
		t.Errorf("client header = %q, want %q", got, exp)
	}
}

func TestHeaders_CustomHeaders(t *testing.T) {
	testCases := []struct {
		name   string
		custom any
	}{
		{name: "map[string]string", custom: map[string]string{"foo": "bar"}},
		{name: "map[string][]string", custom: map[string][]string{"foo": {"bar"}}},
		{name: "http.Header", custom: http.Header{"Foo": {"bar"}}},
		{name: "pairs", custom: [][2]string{{"foo", "bar"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := headersFor(t, request.Options{CustomHeaders: tc.custom})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			exp := http.Header{
				"Foo":               {"bar"},
				"X-Goog-Api-Key":    {"my-key"},
				"X-Goog-Api-Client": {"genai-go/" + request.Version},
			}
			if diff := cmp.Diff(exp, h); diff != "" {
				t.Errorf("headers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHeaders_ReservedNames(t *testing.T) {
	testCases := []struct {
		name   string
		custom any
	}{
		{name: "api key", custom: map[string]string{"x-goog-api-key": "x"}},
		{name: "api client", custom: map[string]string{"x-goog-api-client": "x"}},
		{name: "api key mixed case", custom: map[string]string{"X-Goog-Api-Key": "x"}},
		{name: "reserved among valid", custom: map[string]string{"a": "1", "x-goog-api-client": "x", "z": "2"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := headersFor(t, request.Options{CustomHeaders: tc.custom})
			if !errors.Is(err, request.ErrInvalidInput) {
				t.Fatalf("exp err %v; got: %v", request.ErrInvalidInput, err)
			}

			if _, ok := errors.AsType[*request.InputError](err); !ok {
				t.Fatalf("expected *InputError, got %T", err)
			}
			if h != nil {
				t.Errorf("expected no headers, got %v", h)
			}
		})
	}
}

func TestHeaders_ConversionFailure(t *testing.T) {
	testCases := []struct {
		name   string
		custom any
	}{
		{name: "unsupported type", custom: 42},
		{name: "invalid name", custom: map[string]string{"bad name": "x"}},
		{name: "invalid value", custom: map[string]string{"foo": "line\nbreak"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := headersFor(t, request.Options{CustomHeaders: tc.custom})
			if !errors.Is(err, request.ErrInvalidInput) {
				t.Fatalf("exp err %v; got: %v", request.ErrInvalidInput, err)
			}

			if inputErr, ok := errors.AsType[*request.InputError](err); !ok || inputErr.Err == nil {
				t.Fatalf("expected *InputError wrapping a cause, got %v", err)
			}
			if h != nil {
				t.Errorf("expected no headers, got %v", h)
			}
		})
	}
}
