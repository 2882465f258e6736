package download

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Job is one download run by a [Queue]. It must return once ctx is done.
type Job func(ctx context.Context) error

// Queue runs named download jobs, at most limit at a time. In fail-fast
// mode the first failure cancels running jobs and skips those still
// waiting for a slot.
type Queue struct {
	ctx      context.Context
	cancel   context.CancelCauseFunc
	slots    chan struct{}
	failFast bool

	wg      sync.WaitGroup
	mu      sync.Mutex
	errs    []error
	skipped []string
}

// NewQueue returns a Queue whose jobs run under ctx. limit <= 0 means no
// limit.
func NewQueue(ctx context.Context, limit int, failFast bool) *Queue {
	ctx, cancel := context.WithCancelCause(ctx)

	q := &Queue{
		ctx:      ctx,
		cancel:   cancel,
		failFast: failFast,
	}
	if limit > 0 {
		q.slots = make(chan struct{}, limit)
	}

	return q
}

// Add schedules job. A failure is reported by [Queue.Wait] prefixed
// with name.
func (q *Queue) Add(name string, job Job) {
	q.wg.Add(1)

	go func() {
		defer q.wg.Done()

		if q.slots != nil {
			select {
			case q.slots <- struct{}{}:
				defer func() { <-q.slots }()
			case <-q.ctx.Done():
				q.finish(name, context.Cause(q.ctx))
				return
			}
		}

		// Both select cases may have been ready.
		if q.ctx.Err() != nil {
			q.finish(name, context.Cause(q.ctx))
			return
		}

		q.finish(name, job(q.ctx))
	}()
}

func (q *Queue) finish(name string, err error) {
	if err == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if errors.Is(context.Cause(q.ctx), ErrQueueShutdown) {
		q.skipped = append(q.skipped, name)
		return
	}

	q.errs = append(q.errs, fmt.Errorf("%s: %w", name, err))
	if q.failFast {
		q.cancel(ErrQueueShutdown)
	}
}

// Wait blocks until every job has finished and returns their errors
// joined.
func (q *Queue) Wait() error {
	q.wg.Wait()
	q.cancel(nil)

	q.mu.Lock()
	defer q.mu.Unlock()

	return errors.Join(q.errs...)
}

// Skipped returns the sorted names of jobs stopped by a fail-fast
// shutdown. Call it after [Queue.Wait].
func (q *Queue) Skipped() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := slices.Clone(q.skipped)
	slices.Sort(out)

	return out
}
