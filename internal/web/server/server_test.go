package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	srv := New(http.NewServeMux())

	if srv.srv.Addr != "127.0.0.1:8089" {
		t.Errorf("addr = %q, want %q", srv.srv.Addr, "127.0.0.1:8089")
	}
	if srv.srv.ReadTimeout != 30*time.Second {
		t.Errorf("read timeout = %v, want %v", srv.srv.ReadTimeout, 30*time.Second)
	}
	if srv.srv.WriteTimeout != 60*time.Second {
		t.Errorf("write timeout = %v, want %v", srv.srv.WriteTimeout, 60*time.Second)
	}
	if srv.srv.IdleTimeout != 120*time.Second {
		t.Errorf("idle timeout = %v, want %v", srv.srv.IdleTimeout, 120*time.Second)
	}
	if srv.shutdownTimeout != 20*time.Second {
		t.Errorf("shutdown timeout = %v, want %v", srv.shutdownTimeout, 20*time.Second)
	}
	if srv.logger == nil {
		t.Error("logger is nil, want slog.Default()")
	}
}

func TestNew_WithOptions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	fn := func(ctx context.Context) error { return nil }

	srv := New(http.NewServeMux(),
		WithHost(":9090"),
		WithReadTimeout(1*time.Second),
		WithWriteTimeout(2*time.Second),
		WithIdleTimeout(3*time.Second),
		WithShutdownTimeout(4*time.Second),
		WithLogger(logger),
		WithShutdownFunc(fn),
	)

	if srv.srv.Addr != ":9090" {
		t.Errorf("addr = %q, want %q", srv.srv.Addr, ":9090")
	}
	if srv.srv.ReadTimeout != 1*time.Second {
		t.Errorf("read timeout = %v, want %v", srv.srv.ReadTimeout, 1*time.Second)
	}
	if srv.srv.WriteTimeout != 2*time.Second {
		t.Errorf("write timeout = %v, want %v", srv.srv.WriteTimeout, 2*time.Second)
	}
	if srv.srv.IdleTimeout != 3*time.Second {
		t.Errorf("idle timeout = %v, want %v", srv.srv.IdleTimeout, 3*time.Second)
	}
	if srv.shutdownTimeout != 4*time.Second {
		t.Errorf("shutdown timeout = %v, want %v", srv.shutdownTimeout, 4*time.Second)
	}
	if srv.logger != logger {
		t.Error("logger not set correctly")
	}
	if len(srv.shutdownFuncs) != 1 {
		t.Errorf("shutdown funcs = %d, want 1", len(srv.shutdownFuncs))
	}
}

func TestRun_GracefulShutdown(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	var shutdownCalled atomic.Bool
	srv := New(mux,
		WithListener(ln),
		WithLogger(slog.New(slog.DiscardHandler)),
		WithShutdownFunc(func(ctx context.Context) error {
			shutdownCalled.Store(true)
			return errors.New("logged, not returned")
		}),
	)

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx)
	}()

	waitForServer(t, "http://"+ln.Addr().String()+"/health", 2*time.Second)

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if !shutdownCalled.Load() {
		t.Error("shutdown func was not called")
	}
}

func TestRun_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	srv := New(http.NewServeMux(), WithHost(ln.Addr().String()), WithLogger(slog.New(slog.DiscardHandler)))

	if err := srv.Run(t.Context()); err == nil {
		t.Fatal("expected error for address in use")
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("server at %s not ready after %v", url, timeout)
}
