package channel

import (
	"context"
	"github.com/saylorsolutions/evchan/syncx"
	"time"
)

// Deferred is the eventual result of [Channel.PublishDeferred].
// It's settled by the first listener result, or rejected with [ErrCancelled] if the publish backing it is evicted first.
type Deferred struct {
	future *syncx.Future[any]
	evict  func(...Identity) error
	token  Token
}

func (*Deferred) identity() {}

// Await blocks until a listener result arrives, the [Deferred] is cancelled, or ctx is done.
func (d *Deferred) Await(ctx context.Context) (any, error) {
	return d.future.Await(ctx)
}

// AwaitTimeout is the same as [Deferred.Await], but with an optional timeout instead of a context.
func (d *Deferred) AwaitTimeout(timeout ...time.Duration) (any, error) {
	return d.future.AwaitTimeout(timeout...)
}

// Done is closed once the [Deferred] is settled.
func (d *Deferred) Done() <-chan struct{} {
	return d.future.Done()
}

// Token returns the buffered publish backing the [Deferred].
// It's the zero [Token] if the publish was delivered, or dropped, when it was made.
func (d *Deferred) Token() Token {
	return d.token
}

func (d *Deferred) Settled() bool {
	return d.future.Settled()
}

// Cancel rejects the [Deferred] with [ErrCancelled] and evicts the publish backing it.
// It does nothing if it's already settled.
func (d *Deferred) Cancel() {
	_ = d.evict(d)
	// Still pending if its publish was superseded, and the Channel already let go of it.
	d.future.Reject(ErrCancelled)
}

// PublishDeferred publishes params and returns a [Deferred] for the first listener result.
//
// Unlike [Channel.PublishSync], this will wait for a future subscriber if the publish is buffered.
// Evicting the returned [Deferred], or the buffered publish behind it, rejects it with [ErrCancelled].
// If there's no listener and ReplayCache is disabled for the event, then it's rejected immediately with [ErrDropped].
// Every current listener still receives the publish, but only the first result settles the [Deferred].
func (c *Channel[K]) PublishDeferred(event K, params ...Param) *Deferred {
	d := &Deferred{
		future: syncx.NewFuture[any](),
		evict:  c.Evict,
	}
	token, pending, _ := c.PublishOnceResult(event, func(result any) {
		d.future.Resolve(result)
	}, params...)
	d.token = token
	if d.Settled() {
		return d
	}
	// Either the publish was dropped, or every listener was evicted mid-delivery before it could be called.
	if !pending || token.IsZero() {
		d.future.Reject(ErrDropped)
		return d
	}
	// The token may already be drained by a concurrent subscriber, in which case nothing is watched and the result is on its way.
	unwatch, _ := c.WatchTeardown(token, func() {
		d.future.Reject(ErrCancelled)
	})
	cancel := func() {
		d.future.Reject(ErrCancelled)
		unwatch()
		_ = c.Evict(token)
	}
	syncx.LockFunc(&c.mux, func() {
		if _, ok := c.arena.get(token); !ok {
			return
		}
		c.cancellable[d] = cancel
		c.deferrals[token] = d
	})
	d.future.OnSettle(func(any, error) {
		syncx.LockFunc(&c.mux, func() {
			delete(c.cancellable, d)
			delete(c.deferrals, token)
			delete(c.watches, d)
		})
	})
	return d
}
