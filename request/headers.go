package request

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Reserved header names set from trusted values only.
const (
	HeaderAPIKey    = "x-goog-api-key"
	HeaderAPIClient = "x-goog-api-client"
)

// Client identification sent in HeaderAPIClient.
const (
	PackageLogHeader = "genai-go"
	Version          = "0.1.0"
)

// ClientHeader returns the HeaderAPIClient value for opts.
func ClientHeader(opts Options) string {
	parts := make([]string, 0, 2)
	if opts.APIClient != "" {
		parts = append(parts, opts.APIClient)
	}
	parts = append(parts, PackageLogHeader+"/"+Version)

	return strings.Join(parts, " ")
}

// Headers returns the identity headers for u merged with its custom
// headers. It fails with an *InputError, and returns no headers, when the
// custom headers cannot be converted or name a reserved header.
func Headers(u *URL) (http.Header, error) {
	h := make(http.Header)
	h.Set(HeaderAPIClient, ClientHeader(u.Options))
	h.Set(HeaderAPIKey, u.APIKey)

	if u.Options.CustomHeaders == nil {
		return h, nil
	}

	custom, err := toHeader(u.Options.CustomHeaders)
	if err != nil {
		return nil, NewInputError(err, "unable to convert customHeaders value of type %T to headers", u.Options.CustomHeaders)
	}

	reserved := []string{
		http.CanonicalHeaderKey(HeaderAPIKey),
		http.CanonicalHeaderKey(HeaderAPIClient),
	}

	for _, name := range slices.Sorted(maps.Keys(custom)) {
		if slices.Contains(reserved, name) {
			return nil, NewInputError(nil, "cannot set reserved header name %s", strings.ToLower(name))
		}
		for _, v := range custom[name] {
			h.Add(name, v)
		}
	}

	return h, nil
}

// toHeader converts the supported header-like shapes into a validated
// http.Header with canonical keys.
func toHeader(v any) (http.Header, error) {
	h := make(http.Header)

	add := func(name, value string) error {
		if !httpguts.ValidHeaderFieldName(name) {
			return fmt.Errorf("invalid header name %q", name)
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return fmt.Errorf("invalid value for header %q", name)
		}
		h.Add(name, value)
		return nil
	}

	switch src := v.(type) {
	case http.Header:
		for name, values := range src {
			for _, value := range values {
				if err := add(name, value); err != nil {
					return nil, err
				}
			}
		}
	case map[string][]string:
		for name, values := range src {
			for _, value := range values {
				if err := add(name, value); err != nil {
					return nil, err
				}
			}
		}
	case map[string]string:
		for name, value := range src {
			if err := add(name, value); err != nil {
				return nil, err
			}
		}
	case [][2]string:
		for _, pair := range src {
			if err := add(pair[0], pair[1]); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}

	return h, nil
}
