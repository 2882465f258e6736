package abort_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adamwoolhether/genai/abort"
)

func waitFired(t *testing.T, s *abort.Signal) {
	t.Helper()

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("signal did not fire")
	}
}

func TestNew_NoTriggers(t *testing.T) {
	if s := abort.New(nil, nil); s != nil {
		t.Fatalf("expected nil signal, got %v", s)
	}

	negative := -1 * time.Millisecond
	if s := abort.New(&negative, nil); s != nil {
		t.Fatalf("expected nil signal for negative timeout, got %v", s)
	}
}

func TestNew_ZeroTimeout(t *testing.T) {
	zero := time.Duration(0)
	s := abort.New(&zero, nil)
	if s == nil {
		t.Fatal("expected signal for zero timeout")
	}

	waitFired(t, s)

	if !s.Aborted() {
		t.Error("expected signal to be aborted")
	}
	if !errors.Is(s.Err(), abort.ErrTimeout) {
		t.Errorf("exp err %v; got: %v", abort.ErrTimeout, s.Err())
	}
}

func TestNew_PreAbortedParent(t *testing.T) {
	ctrl := abort.NewController()
	cause := errors.New("user went away")
	ctrl.Abort(cause)

	s := abort.New(nil, ctrl.Signal())
	if s == nil {
		t.Fatal("expected signal")
	}

	if !s.Aborted() {
		t.Fatal("expected signal to already be aborted")
	}
	if !errors.Is(s.Err(), cause) {
		t.Errorf("exp err %v; got: %v", cause, s.Err())
	}
}

func TestNew_ParentFiresLater(t *testing.T) {
	ctrl := abort.NewController()
	long := time.Hour

	s := abort.New(&long, ctrl.Signal())
	defer s.Release()

	if s.Aborted() {
		t.Fatal("signal fired early")
	}
	if s.Err() != nil {
		t.Fatalf("exp nil err while pending, got: %v", s.Err())
	}

	ctrl.Abort(nil)
	waitFired(t, s)

	if !errors.Is(s.Err(), abort.ErrAborted) {
		t.Errorf("exp err %v; got: %v", abort.ErrAborted, s.Err())
	}
}

func TestRelease_StopsTimer(t *testing.T) {
	d := 20 * time.Millisecond
	s := abort.New(&d, nil)
	s.Release()
	s.Release()

	select {
	case <-s.Done():
		t.Fatal("released signal must not fire")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRelease_DetachesParent(t *testing.T) {
	ctrl := abort.NewController()
	s := abort.New(nil, ctrl.Signal())
	s.Release()

	ctrl.Abort(nil)

	select {
	case <-s.Done():
		t.Fatal("released signal must not follow its parent")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestOnAbort(t *testing.T) {
	ctrl := abort.NewController()

	called := make(chan struct{})
	ctrl.Signal().OnAbort(func() { close(called) })

	ctrl.Abort(nil)

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("callback not invoked")
	}
}

func TestFromContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := abort.FromContext(ctx)
	defer s.Release()

	if s.Aborted() {
		t.Fatal("signal fired early")
	}

	cancel()
	waitFired(t, s)

	if !errors.Is(s.Err(), context.Canceled) {
		t.Errorf("exp err %v; got: %v", context.Canceled, s.Err())
	}

	done, stop := context.WithCancel(context.Background())
	stop()
	if !abort.FromContext(done).Aborted() {
		t.Error("signal from a done context should already be aborted")
	}
}

func TestBind(t *testing.T) {
	t.Run("signal cancels bound context", func(t *testing.T) {
		ctrl := abort.NewController()
		ctx, cancel := ctrl.Signal().Bind(t.Context())
		defer cancel()

		ctrl.Abort(nil)

		select {
		case <-ctx.Done():
		case <-time.After(2 * time.Second):
			t.Fatal("bound context not cancelled")
		}

		if !errors.Is(context.Cause(ctx), abort.ErrAborted) {
			t.Errorf("exp cause %v; got: %v", abort.ErrAborted, context.Cause(ctx))
		}
	})

	t.Run("fired signal cancels immediately", func(t *testing.T) {
		ctrl := abort.NewController()
		ctrl.Abort(nil)

		ctx, cancel := ctrl.Signal().Bind(t.Context())
		defer cancel()

		if ctx.Err() == nil {
			t.Fatal("expected bound context to be cancelled")
		}
	})

	t.Run("cancel func leaves signal pending", func(t *testing.T) {
		ctrl := abort.NewController()
		_, cancel := ctrl.Signal().Bind(t.Context())
		cancel()

		if ctrl.Signal().Aborted() {
			t.Fatal("cancelling the bound context must not fire the signal")
		}
	})
}
