package pkgpool

import "context"

// Future is the handle for one scheduled task. It settles exactly once,
// with either the task's value or its error.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// settle must be called exactly once; the closed channel publishes value and
// err to every waiter.
func (f *Future[T]) settle(value T, err error) {
	f.value = value
	f.err = err
	close(f.done)
}

// Wait blocks until the future settles or ctx is done. Returning early
// because of ctx does not stop the task; a later Wait still picks up the
// result.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done returns a channel that is closed once the future has settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}
