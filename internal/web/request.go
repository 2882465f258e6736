// Package web holds the request decoding and response helpers shared by
// emulator handlers.
package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/adamwoolhether/genai/internal/validate"
)

// Param extracts a path parameter by key and returns its string value.
func Param(r *http.Request, key string) (string, error) {
	val := r.PathValue(key)
	if val == "" {
		return "", fmt.Errorf("path param[%s] not found", key)
	}

	return val, nil
}

// QueryInt parses the query parameter key as an int, returning def when
// it is absent.
func QueryInt(r *http.Request, key string, def int) (int, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return def, nil
	}

	v, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("query param[%s] must be integer: %w", key, err)
	}

	return v, nil
}

// Decode reads the body of an HTTP request looking for a JSON document. The
// body is decoded into the provided value and then checked for validation
// tags. Unknown fields are rejected.
func Decode[T any](r *http.Request, val *T) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(val); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	if err := validate.Struct(val); err != nil {
		return err
	}

	return nil
}
