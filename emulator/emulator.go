// Package emulator serves an in-memory stand-in for the cachedContents and
// files endpoints of the Generative Language API. It is meant for tests
// and offline development: state lives only as long as the Emulator.
//
//	em := emulator.New(emulator.WithAPIKey("test-key"))
//	ts := httptest.NewServer(em)
//	defer ts.Close()
//
//	caches := cache.NewManager("test-key", request.WithBaseURL(ts.URL))
package emulator

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/genai/cache"
	"github.com/adamwoolhether/genai/files"
	"github.com/adamwoolhether/genai/internal/metrics"
	"github.com/adamwoolhether/genai/internal/web/middleware"
	"github.com/adamwoolhether/genai/internal/web/mux"
)

const (
	defaultCacheTTL = time.Hour
	fileRetention   = 48 * time.Hour
	maxUploadSize   = 100 << 20
	defaultPageSize = 100
	maxPageSize     = 1000
)

// Emulator is an http.Handler holding cached contents and files in memory.
type Emulator struct {
	handler http.Handler
	app     *mux.App
	metrics *metrics.Metrics
	log     *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time
	apiKey  string

	mu     sync.Mutex
	caches map[string]*cache.CachedContent
	cOrder []string
	files  map[string]*storedFile
	fOrder []string
}

type storedFile struct {
	meta files.File
	data []byte
}

// Option configures an [Emulator].
type Option func(*Emulator)

// WithAPIKey makes the emulator reject requests that do not carry key.
func WithAPIKey(key string) Option {
	return func(e *Emulator) {
		e.apiKey = key
	}
}

// WithLogger sets the request logger. Default is slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(e *Emulator) {
		e.log = log
	}
}

// WithClock replaces time.Now, for controlling expiry in tests.
func WithClock(now func() time.Time) Option {
	return func(e *Emulator) {
		e.now = now
	}
}

// WithTracer records a server span for every request.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Emulator) {
		e.tracer = tracer
	}
}

// New returns an empty Emulator.
func New(opts ...Option) *Emulator {
	e := &Emulator{
		metrics: metrics.New(),
		log:     slog.Default(),
		now:     time.Now,
		caches:  make(map[string]*cache.CachedContent),
		files:   make(map[string]*storedFile),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.app = mux.New(
		mux.WithLogger(e.log),
		mux.WithTracer(e.tracer),
		mux.WithMiddleware(
			middleware.Logger(e.log),
			middleware.Metrics(e.metrics),
			middleware.Errors(e.log),
			middleware.APIKey(e.apiKey),
			middleware.Panics(),
		),
	)
	e.routes()

	root := http.NewServeMux()
	root.Handle("GET /metrics", e.metrics.Handler())
	root.Handle("/", e.app)
	e.handler = root

	return e
}

func (e *Emulator) routes() {
	e.app.Post("/{version}/cachedContents", e.createCache)
	e.app.Get("/{version}/cachedContents", e.listCaches)
	e.app.Get("/{version}/cachedContents/{id}", e.getCache)
	e.app.Patch("/{version}/cachedContents/{id}", e.updateCache)
	e.app.Delete("/{version}/cachedContents/{id}", e.deleteCache)

	e.app.Post("/upload/{version}/files", e.uploadFile)
	e.app.Get("/{version}/files", e.listFiles)
	e.app.Get("/{version}/files/{id}", e.getFile)
	e.app.Delete("/{version}/files/{id}", e.deleteFile)
	e.app.Get("/download/{version}/files/{id}", e.downloadFile)
}

// ServeHTTP implements http.Handler. GET /metrics serves Prometheus
// metrics without requiring the API key.
func (e *Emulator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.handler.ServeHTTP(w, r)
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
