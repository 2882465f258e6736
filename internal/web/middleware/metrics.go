package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/adamwoolhether/genai/internal/metrics"
	"github.com/adamwoolhether/genai/internal/web/mux"
)

// Metrics records the method, matched route, status and latency of every
// request. It must run outside Errors so failed requests carry their
// final status.
func Metrics(m *metrics.Metrics) mux.Middleware {
	mw := func(handler mux.Handler) mux.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			start := time.Now()
			err := handler(ctx, w, r)

			status := mux.GetValues(ctx).StatusCode
			if status == 0 {
				status = http.StatusOK
			}
			m.ObserveRequest(r.Method, r.Pattern, status, time.Since(start))

			return err
		}
		return h
	}
	return mw
}
