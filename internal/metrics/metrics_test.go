package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/adamwoolhether/genai/internal/metrics"
)

func TestObserveRequest(t *testing.T) {
	m := metrics.New()
	m.ObserveRequest(http.MethodGet, "GET /{version}/files", http.StatusOK, 3*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "GET /{version}/files", http.StatusOK, 7*time.Millisecond)
	m.ObserveRequest(http.MethodDelete, "DELETE /{version}/files/{id}", http.StatusNotFound, time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(w.Body)
	for _, want := range []string{
		`genai_emulator_requests_total{method="GET",route="GET /{version}/files",status="200"} 2`,
		`genai_emulator_requests_total{method="DELETE",route="DELETE /{version}/files/{id}",status="404"} 1`,
		`genai_emulator_request_latency_ms_count{method="GET",route="GET /{version}/files",status="200"} 2`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q\n%s", want, body)
		}
	}
}
