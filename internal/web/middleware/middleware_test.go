package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/genai/internal/validate"
	"github.com/adamwoolhether/genai/internal/web/errs"
	"github.com/adamwoolhether/genai/internal/web/middleware"
	"github.com/adamwoolhether/genai/internal/web/mux"
)

type envelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func serve(t *testing.T, log *slog.Logger, h mux.Handler, mw ...mux.Middleware) (int, envelope, http.Header) {
	t.Helper()

	app := mux.New(mux.WithLogger(log), mux.WithMiddleware(mw...))
	app.Get("/x", h)

	srv := httptest.NewServer(app)
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/x?pageToken=secret", nil)
	req.Header.Set("x-goog-api-key", "good")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var env envelope
	b, _ := io.ReadAll(resp.Body)
	if len(b) > 0 {
		if err := json.Unmarshal(b, &env); err != nil {
			t.Fatalf("decoding %q: %v", b, err)
		}
	}

	return resp.StatusCode, env, resp.Header
}

func TestErrors(t *testing.T) {
	log := slog.New(slog.DiscardHandler)

	tests := map[string]struct {
		err       error
		expCode   int
		expStatus string
		expMsg    string
	}{
		"app error": {
			err:       errs.New(http.StatusNotFound, errors.New("files/abc not found")),
			expCode:   http.StatusNotFound,
			expStatus: "NOT_FOUND",
			expMsg:    "files/abc not found",
		},
		"field errors": {
			err:       validate.FieldErrors{{Field: "model", Err: "This field is required"}},
			expCode:   http.StatusBadRequest,
			expStatus: "INVALID_ARGUMENT",
			expMsg:    "model: This field is required",
		},
		"unexpected error is obscured": {
			err:       errors.New("database password is hunter2"),
			expCode:   http.StatusInternalServerError,
			expStatus: "INTERNAL",
			expMsg:    http.StatusText(http.StatusInternalServerError),
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			code, env, _ := serve(t, log, func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				return tc.err
			}, middleware.Errors(log))

			if code != tc.expCode {
				t.Errorf("status = %d, want %d", code, tc.expCode)
			}

			exp := envelope{}
			exp.Error.Code = tc.expCode
			exp.Error.Status = tc.expStatus
			exp.Error.Message = tc.expMsg
			if diff := cmp.Diff(exp, env); diff != "" {
				t.Errorf("envelope mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPanics(t *testing.T) {
	log := slog.New(slog.DiscardHandler)

	code, env, _ := serve(t, log, func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		panic("boom")
	}, middleware.Errors(log), middleware.Panics())

	if code != http.StatusInternalServerError || env.Error.Status != "INTERNAL" {
		t.Errorf("status = %d envelope = %+v", code, env)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	serve(t, log, func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		mux.SetStatusCode(ctx, http.StatusOK)
		return nil
	}, middleware.Logger(log))

	out := buf.String()
	for _, want := range []string{"request started", "request completed", "path=/x", "statusCode=200"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "secret") {
		t.Errorf("log leaks query string:\n%s", out)
	}
}

func TestAPIKey(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	ok := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}

	tests := map[string]struct {
		key     string
		expCode int
	}{
		"matching key": {key: "good", expCode: http.StatusNoContent},
		"wrong key":    {key: "other", expCode: http.StatusForbidden},
		"no key set":   {key: "", expCode: http.StatusNoContent},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			code, _, _ := serve(t, log, ok, middleware.Errors(log), middleware.APIKey(tc.key))
			if code != tc.expCode {
				t.Errorf("status = %d, want %d", code, tc.expCode)
			}
		})
	}
}
