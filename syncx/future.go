package syncx

import (
	"context"
	"sync"
	"time"
)

// Future is a value that is settled asynchronously at a later time, either with a value or an error.
// Only the first call to [Future.Resolve] or [Future.Reject] settles it, later calls do nothing.
// Once settled, the result is cached for every call to Await.
type Future[T any] struct {
	done    chan struct{}
	settle  sync.Once
	val     T
	err     error
	mux     sync.Mutex
	settled bool
	onDone  []func(T, error)
}

func NewFuture[T any]() *Future[T] {
	return &Future[T]{
		done: make(chan struct{}),
	}
}

// Resolve settles the [Future] with val, and reports whether this call settled it.
func (f *Future[T]) Resolve(val T) bool {
	return f.complete(val, nil)
}

// Reject settles the [Future] with err, and reports whether this call settled it.
// A nil error is still a rejection, and Await will return the zero value of T.
func (f *Future[T]) Reject(err error) bool {
	var zero T
	return f.complete(zero, err)
}

func (f *Future[T]) complete(val T, err error) bool {
	var (
		won       bool
		callbacks []func(T, error)
	)
	f.settle.Do(func() {
		won = true
		LockFunc(&f.mux, func() {
			f.val = val
			f.err = err
			f.settled = true
			callbacks = f.onDone
			f.onDone = nil
		})
	})
	if !won {
		return false
	}
	// Callbacks run before waiters are released, so anything they clean up is done by the time Await returns.
	for _, fn := range callbacks {
		fn(val, err)
	}
	close(f.done)
	return true
}

// OnSettle registers fn to be called once the [Future] is settled.
// If it's already settled, then fn is called immediately in the calling goroutine.
func (f *Future[T]) OnSettle(fn func(T, error)) {
	if fn == nil {
		return
	}
	f.mux.Lock()
	if !f.settled {
		f.onDone = append(f.onDone, fn)
		f.mux.Unlock()
		return
	}
	val, err := f.val, f.err
	f.mux.Unlock()
	fn(val, err)
}

// Settled reports whether the [Future] has been resolved or rejected.
func (f *Future[T]) Settled() bool {
	return LockFuncT(&f.mux, func() bool {
		return f.settled
	})
}

// Done returns a channel that's closed once the [Future] is settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the [Future] is settled, or the context is done.
// If the context ends first, the zero value of T is returned along with the context's error.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AwaitTimeout is the same as [Future.Await], but with a timeout instead of a context.
// If no timeout is given, then the function will wait indefinitely.
func (f *Future[T]) AwaitTimeout(timeout ...time.Duration) (T, error) {
	var (
		ctx    = context.Background()
		cancel = func() {}
	)
	if len(timeout) > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout[0])
	}
	defer cancel()
	return f.Await(ctx)
}
