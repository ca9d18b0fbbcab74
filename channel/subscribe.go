package channel

import (
	"fmt"
	"github.com/saylorsolutions/evchan/syncx"
	"sync/atomic"
)

// Subscribe registers listener for the event, and returns a [Token] that may be used to evict it later.
//
// If ExclusiveListen resolves true for the event, then any existing listeners are discarded first without firing their teardown hooks.
// If ReplayCache resolves true, then publishes buffered for the event are replayed through listener in the order they were published, before Subscribe returns.
// A buffered request/response publish receives listener's return value.
func (c *Channel[K]) Subscribe(event K, listener Listener) (Token, error) {
	return c.subscribe(event, listener, nil)
}

// subscribe calls bind with the new token before it can be delivered to, so a listener can refer to its own token even during replay.
// bind is called with the lock held and must not call back into the Channel.
func (c *Channel[K]) subscribe(event K, listener Listener, bind func(Token)) (Token, error) {
	if listener == nil {
		return Token{}, fmt.Errorf("%w: nil listener", ErrInvalidArgument)
	}
	var (
		token   Token
		pending []Token
	)
	syncx.LockFunc(&c.mux, func() {
		opts := c.resolve(event)
		if opts.ExclusiveListen {
			if existing, ok := c.listeners[event]; ok {
				for _, replaced := range existing.Clear() {
					c.discard(replaced)
				}
				c.log.Debug("Replaced exclusive listeners", "event", event)
			}
		}
		token = c.arena.alloc(entry[K]{kind: kindListener, key: event, listener: listener})
		c.members(kindListener, event).Add(token)
		if bind != nil {
			bind(token)
		}
		if opts.ReplayCache {
			if cached, ok := c.caches[event]; ok {
				pending = cached.Values()
			}
		}
	})
	c.log.Debug("Registered listener", "event", event, "token", token, "pending", len(pending))
	c.replay(event, token, listener, pending)
	return token, nil
}

// replay drains buffered calls through a newly registered listener.
// Every call in the snapshot is consumed. If the listener is evicted partway through, as a once listener is,
// the remaining calls are consumed without invoking it, and their result funcs receive nil.
func (c *Channel[K]) replay(event K, token Token, listener Listener, calls []Token) {
	for _, call := range calls {
		var (
			params  []Param
			result  ResultFunc
			evicted bool
			found   bool
		)
		syncx.LockFunc(&c.mux, func() {
			_, live := c.arena.get(token)
			evicted = !live
			e, ok := c.arena.get(call)
			if !ok {
				return
			}
			found = true
			params, result = e.params, e.result
			if cached, ok := c.caches[event]; ok {
				cached.Remove(call)
				if cached.Len() == 0 {
					delete(c.caches, event)
				}
			}
			c.discard(call)
		})
		if !found {
			continue
		}
		if evicted {
			c.log.Debug("Consumed buffered publish after listener eviction", "event", event, "call", call, "token", token)
			if result != nil {
				result(nil)
			}
			continue
		}
		c.log.Debug("Replaying buffered publish", "event", event, "call", call, "token", token)
		val := listener(params...)
		if result != nil {
			result(val)
		}
	}
}

// SubscribeOnce registers a listener that evicts itself after its first call, returning that call's result.
// Replay counts as a call, so a buffered publish may be the only one it ever sees.
func (c *Channel[K]) SubscribeOnce(event K, listener Listener) (Token, error) {
	if listener == nil {
		return Token{}, fmt.Errorf("%w: nil listener", ErrInvalidArgument)
	}
	var (
		fired atomic.Bool
		self  atomic.Pointer[Token]
	)
	wrapper := func(params ...Param) any {
		if !fired.CompareAndSwap(false, true) {
			return nil
		}
		val := listener(params...)
		if t := self.Load(); t != nil {
			_ = c.Evict(*t)
		}
		return val
	}
	return c.subscribe(event, wrapper, func(token Token) {
		self.Store(&token)
	})
}
