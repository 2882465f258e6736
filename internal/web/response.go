package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/adamwoolhether/genai/internal/web/mux"
)

// RespondJSON to an HTTP request, setting the status code and body if any.
func RespondJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) error {
	mux.SetStatusCode(ctx, statusCode)

	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if _, err = w.Write(jsonData); err != nil {
		return err
	}

	return nil
}

// RespondBytes writes b with the given content type and a 200 status.
func RespondBytes(ctx context.Context, w http.ResponseWriter, contentType string, b []byte) error {
	mux.SetStatusCode(ctx, http.StatusOK)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.WriteHeader(http.StatusOK)

	_, err := w.Write(b)
	return err
}
