package async

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ErrNilFuture is returned when a continuation or collaborator produces no
// future to wait on.
var ErrNilFuture = errors.New("nil future")

// Future holds the eventual result of an asynchronous computation. A future is
// completed exactly once; later completions are ignored.
type Future[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	completed bool
	val       T
	err       error
	callbacks []func()
}

// NewFuture returns an incomplete future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Completed returns a future already holding v.
func Completed[T any](v T) *Future[T] {
	f := NewFuture[T]()
	f.Complete(v)
	return f
}

// Failed returns a future already holding err.
func Failed[T any](err error) *Future[T] {
	f := NewFuture[T]()
	f.Fail(err)
	return f
}

// Complete resolves the future with v. It reports whether this call completed it.
func (f *Future[T]) Complete(v T) bool {
	return f.resolve(v, nil)
}

// Fail resolves the future with err. It reports whether this call completed it.
func (f *Future[T]) Fail(err error) bool {
	var zero T
	if err == nil {
		err = errors.New("future failed with nil error")
	}
	return f.resolve(zero, err)
}

func (f *Future[T]) resolve(v T, err error) bool {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return false
	}
	f.completed = true
	f.val = v
	f.err = err
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
	return true
}

// Done is closed once the future is resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Result returns the value and error without blocking. ok is false while the
// future is still pending.
func (f *Future[T]) Result() (v T, err error, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.completed {
		return v, nil, false
	}
	return f.val, f.err, true
}

// Await blocks until the future resolves or ctx is done. Cancelling ctx only
// stops the wait; the underlying computation keeps running.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnComplete registers fn to run on s once the future resolves. If the future
// has already resolved, fn is scheduled right away.
func (f *Future[T]) OnComplete(s Scheduler, fn func(T, error)) {
	run := func() {
		s.Go(func() { fn(f.val, f.err) })
	}
	f.mu.Lock()
	if !f.completed {
		f.callbacks = append(f.callbacks, run)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	run()
}

// OrFailed returns f, or a future failed with ErrNilFuture if f is nil.
func OrFailed[T any](f *Future[T]) *Future[T] {
	if f == nil {
		return Failed[T](ErrNilFuture)
	}
	return f
}

// Run executes fn on s and returns a future for its result.
func Run[T any](s Scheduler, fn func() (T, error)) *Future[T] {
	out := NewFuture[T]()
	s.Go(func() {
		v, err := fn()
		if err != nil {
			out.Fail(err)
			return
		}
		out.Complete(v)
	})
	return out
}

// Then maps a successful result of f through fn. Errors propagate unchanged.
func Then[T, U any](s Scheduler, f *Future[T], fn func(T) (U, error)) *Future[U] {
	out := NewFuture[U]()
	f.OnComplete(s, func(v T, err error) {
		if err != nil {
			out.Fail(err)
			return
		}
		u, err := fn(v)
		if err != nil {
			out.Fail(err)
			return
		}
		out.Complete(u)
	})
	return out
}

// Compose chains f into the future returned by fn.
func Compose[T, U any](s Scheduler, f *Future[T], fn func(T) *Future[U]) *Future[U] {
	out := NewFuture[U]()
	f.OnComplete(s, func(v T, err error) {
		if err != nil {
			out.Fail(err)
			return
		}
		next := fn(v)
		if next == nil {
			out.Fail(ErrNilFuture)
			return
		}
		Propagate(s, next, out)
	})
	return out
}

// Propagate resolves target with the outcome of src.
func Propagate[T any](s Scheduler, src, target *Future[T]) {
	src.OnComplete(s, func(v T, err error) {
		if err != nil {
			target.Fail(err)
			return
		}
		target.Complete(v)
	})
}
