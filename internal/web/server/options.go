package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Option configures a Server.
type Option func(*options)

type options struct {
	srv             *http.Server
	host            string
	listener        net.Listener
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger
	shutdownFuncs   []shutdownFunc
}

type shutdownFunc func(ctx context.Context) error

// WithServer injects an existing [http.Server] as the base configuration.
// Any other options applied after this one override the corresponding
// fields on the provided server.
func WithServer(srv *http.Server) Option {
	return func(opts *options) {
		opts.srv = srv
	}
}

// WithHost sets the host address the server listens on. Default is "127.0.0.1:8089".
func WithHost(host string) Option {
	return func(opts *options) {
		opts.host = host
	}
}

// WithListener serves on an already bound listener instead of the host address.
func WithListener(ln net.Listener) Option {
	return func(opts *options) {
		opts.listener = ln
	}
}

// WithReadTimeout sets the maximum duration for reading the entire
// request, including the body. Default is 30s.
func WithReadTimeout(d time.Duration) Option {
	return func(opts *options) {
		opts.readTimeout = d
	}
}

// WithWriteTimeout sets the maximum duration before timing out
// writes of the response. Default is 60s.
func WithWriteTimeout(d time.Duration) Option {
	return func(opts *options) {
		opts.writeTimeout = d
	}
}

// WithIdleTimeout sets the maximum amount of time to wait for the
// next request when keep-alives are enabled. Default is 120s.
func WithIdleTimeout(d time.Duration) Option {
	return func(opts *options) {
		opts.idleTimeout = d
	}
}

// WithShutdownTimeout bounds how long [Server.Run] waits for in-flight
// requests once its context ends. Default is 20s.
func WithShutdownTimeout(d time.Duration) Option {
	return func(opts *options) {
		opts.shutdownTimeout = d
	}
}

// WithLogger sets the logger used for server lifecycle events.
// Default is slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = log
	}
}

// WithShutdownFunc registers a function to call during graceful shutdown,
// before the HTTP server is stopped. Multiple shutdown functions are
// called in the order they were registered.
func WithShutdownFunc(fn func(ctx context.Context) error) Option {
	return func(opts *options) {
		opts.shutdownFuncs = append(opts.shutdownFuncs, fn)
	}
}
