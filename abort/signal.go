// Package abort provides a one-shot cancellation signal that can be composed
// from a timeout and an externally held signal.
//
// # Building a Signal
//
// Use [New] to combine an optional timeout with an optional parent signal:
//
//	ctrl := abort.NewController()
//	timeout := 30 * time.Second
//	sig := abort.New(&timeout, ctrl.Signal())
//	defer sig.Release()
//
// The returned signal fires on whichever happens first. [New] returns nil
// when neither trigger is configured.
package abort

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrAborted is the cause reported when a [Controller] is aborted without an explicit cause.
	ErrAborted = errors.New("signal aborted")
	// ErrTimeout is the cause reported when a timeout elapses.
	ErrTimeout = errors.New("signal timeout elapsed")
)

// Signal transitions once from pending to fired. The zero value is not usable;
// obtain one from [New], [NewController] or [FromContext].
type Signal struct {
	ctx    context.Context
	cancel context.CancelCauseFunc

	mu       sync.Mutex
	timer    *time.Timer
	detach   func() bool
	released bool
}

func newSignal(parent context.Context) *Signal {
	ctx, cancel := context.WithCancelCause(parent)
	return &Signal{ctx: ctx, cancel: cancel}
}

// New returns a signal that fires when timeout elapses or parent fires,
// whichever comes first. A nil or negative timeout is ignored. New returns
// nil when neither trigger is present.
func New(timeout *time.Duration, parent *Signal) *Signal {
	hasTimeout := timeout != nil && *timeout >= 0
	if !hasTimeout && parent == nil {
		return nil
	}

	s := newSignal(context.Background())

	if hasTimeout {
		s.timer = time.AfterFunc(*timeout, func() { s.cancel(ErrTimeout) })
	}

	if parent != nil {
		if parent.Aborted() {
			s.cancel(parent.Err())
		} else {
			s.detach = parent.OnAbort(func() { s.cancel(parent.Err()) })
		}
	}

	return s
}

// FromContext adapts ctx into a Signal that fires when ctx is done.
func FromContext(ctx context.Context) *Signal {
	s := newSignal(context.Background())
	if ctx.Err() != nil {
		s.cancel(context.Cause(ctx))
		return s
	}
	s.detach = context.AfterFunc(ctx, func() { s.cancel(context.Cause(ctx)) })

	return s
}

// Done returns a channel closed once the signal fires.
func (s *Signal) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Aborted reports whether the signal has fired.
func (s *Signal) Aborted() bool {
	return s.ctx.Err() != nil
}

// Err returns nil while pending, and the cause once fired.
func (s *Signal) Err() error {
	if s.ctx.Err() == nil {
		return nil
	}

	return context.Cause(s.ctx)
}

// OnAbort arranges for fn to run in its own goroutine once the signal fires.
// If the signal already fired, fn runs immediately. The returned stop func
// deregisters fn and reports whether it did so before fn was started.
func (s *Signal) OnAbort(fn func()) (stop func() bool) {
	return context.AfterFunc(s.ctx, fn)
}

// Bind derives a context from ctx that is also cancelled, with the signal's
// cause, when the signal fires. Callers must call the returned cancel func.
func (s *Signal) Bind(ctx context.Context) (context.Context, context.CancelFunc) {
	bound, cancel := context.WithCancelCause(ctx)
	if s.Aborted() {
		cancel(s.Err())
		return bound, func() { cancel(context.Canceled) }
	}

	stop := s.OnAbort(func() { cancel(s.Err()) })

	return bound, func() {
		stop()
		cancel(context.Canceled)
	}
}

// Release stops a pending timeout and detaches the signal from its parent
// without firing it. It is safe to call more than once.
func (s *Signal) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return
	}
	s.released = true

	if s.timer != nil {
		s.timer.Stop()
	}
	if s.detach != nil {
		s.detach()
	}
}

// Controller owns a signal and can fire it.
type Controller struct {
	sig *Signal
}

// NewController returns a controller with a pending signal.
func NewController() *Controller {
	return &Controller{sig: newSignal(context.Background())}
}

// Signal returns the controller's signal.
func (c *Controller) Signal() *Signal {
	return c.sig
}

// Abort fires the signal with cause. A nil cause is reported as [ErrAborted].
// Only the first call has an effect.
func (c *Controller) Abort(cause error) {
	if cause == nil {
		cause = ErrAborted
	}
	c.sig.cancel(cause)
}
