// Package middleware provides the route middleware used by the emulator.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/adamwoolhether/genai/internal/web/mux"
)

// Logger logs the start and completion of every request. Query strings
// are omitted since they may carry page tokens.
func Logger(log *slog.Logger) mux.Middleware {
	m := func(handler mux.Handler) mux.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			v := mux.GetValues(ctx)

			log.Info("request started", "method", r.Method, "path", r.URL.Path, "remoteaddr", r.RemoteAddr, "trace_id", v.TraceID)

			err := handler(ctx, w, r)

			log.Info("request completed", "method", r.Method, "path", r.URL.Path, "remoteaddr", r.RemoteAddr, "statusCode", v.StatusCode, "since", time.Since(v.Now).String())

			return err
		}

		return h
	}

	return m
}
