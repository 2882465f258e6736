package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/adamwoolhether/genai/internal/web/errs"
	"github.com/adamwoolhether/genai/internal/web/mux"
)

// APIKey rejects requests whose x-goog-api-key header does not match key.
// An empty key accepts every request.
func APIKey(key string) mux.Middleware {
	m := func(handler mux.Handler) mux.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if key == "" {
				return handler(ctx, w, r)
			}

			got := r.Header.Get("x-goog-api-key")
			if got == "" {
				return errs.New(http.StatusUnauthorized, errors.New("missing API key"))
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				return errs.New(http.StatusForbidden, errors.New("API key not valid"))
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
