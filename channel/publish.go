package channel

import (
	"fmt"
	"github.com/saylorsolutions/evchan/syncx"
	"sync/atomic"
)

// Publish delivers params to every listener for the event, in the order they subscribed.
//
// If the event has listeners, then pending is false and the returned [Token] is the zero value.
// Otherwise pending is true: with ReplayCache enabled the publish is buffered and the Token can be used to evict it,
// and with ReplayCache disabled the publish is dropped and the Token is never live.
// With ReplayOnce enabled, a buffered publish replaces any already buffered for the event.
func (c *Channel[K]) Publish(event K, params ...Param) (token Token, pending bool) {
	return c.publish(event, params, nil)
}

// PublishResult is the same as [Channel.Publish], but fn receives the return value of each listener that handles the publish.
// For a synchronous delivery fn is called once per listener. For a buffered publish fn is called once, when a subscriber replays it.
func (c *Channel[K]) PublishResult(event K, fn ResultFunc, params ...Param) (token Token, pending bool, err error) {
	if fn == nil {
		return Token{}, false, fmt.Errorf("%w: nil result func", ErrInvalidArgument)
	}
	token, pending = c.publish(event, params, fn)
	return token, pending, nil
}

// PublishOnceResult is the same as [Channel.PublishResult], except only the first result is passed to fn.
// When the result comes from replay, the buffered publish is evicted after fn returns.
func (c *Channel[K]) PublishOnceResult(event K, fn ResultFunc, params ...Param) (token Token, pending bool, err error) {
	if fn == nil {
		return Token{}, false, fmt.Errorf("%w: nil result func", ErrInvalidArgument)
	}
	var (
		fired  atomic.Bool
		issued atomic.Pointer[Token]
	)
	once := func(result any) {
		if !fired.CompareAndSwap(false, true) {
			return
		}
		fn(result)
		if t := issued.Load(); t != nil {
			_ = c.Evict(*t)
		}
	}
	token, pending = c.publish(event, params, once)
	if pending {
		issued.Store(&token)
	}
	return token, pending, nil
}

// PublishSync publishes and returns the first listener's result, without waiting for anything.
// Only listeners registered at the time of the call are considered; nothing is left buffered afterward.
// If no listener handled the publish, then ok is false.
func (c *Channel[K]) PublishSync(event K, params ...Param) (result any, ok bool) {
	token, pending, _ := c.PublishOnceResult(event, func(val any) {
		result, ok = val, true
	}, params...)
	if pending {
		_ = c.Evict(token)
	}
	return result, ok
}

func (c *Channel[K]) publish(event K, params []Param, fn ResultFunc) (Token, bool) {
	var (
		targets []Token
		token   Token
		cached  bool
	)
	syncx.LockFunc(&c.mux, func() {
		if live, ok := c.listeners[event]; ok && live.Len() > 0 {
			targets = live.Values()
			return
		}
		opts := c.resolve(event)
		if !opts.ReplayCache {
			return
		}
		members := c.members(kindCall, event)
		if opts.ReplayOnce {
			for _, superseded := range members.Clear() {
				c.discard(superseded)
			}
		}
		token = c.arena.alloc(entry[K]{kind: kindCall, key: event, params: params, result: fn})
		members.Add(token)
		cached = true
	})
	if len(targets) > 0 {
		c.deliver(targets, params, fn)
		return Token{}, false
	}
	if cached {
		c.log.Debug("Buffered publish", "event", event, "call", token)
	} else {
		c.log.Debug("Dropped publish", "event", event)
	}
	return token, true
}

// deliver calls each target in order, skipping any that were evicted by an earlier listener in the same delivery.
func (c *Channel[K]) deliver(targets []Token, params []Param, fn ResultFunc) {
	for _, target := range targets {
		listener := syncx.RLockFuncT(&c.mux, func() Listener {
			if e, ok := c.arena.get(target); ok && e.kind == kindListener {
				return e.listener
			}
			return nil
		})
		if listener == nil {
			continue
		}
		val := listener(params...)
		if fn != nil {
			fn(val)
		}
	}
}
