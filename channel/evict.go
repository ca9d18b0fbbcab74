package channel

import (
	"fmt"
	"github.com/saylorsolutions/evchan/structures/set"
	"github.com/saylorsolutions/evchan/syncx"
)

// Evict removes each identity from the [Channel]:
//   - A [Token] removes the listener or buffered publish it names. If that leaves its event with no listeners (or nothing buffered), the event is removed too.
//   - A [Key] removes every listener and buffered publish for the event.
//   - A [*Deferred] cancels it, rejecting it with [ErrCancelled] and evicting the publish backing it.
//
// Teardown hooks registered with [Channel.WatchTeardown] fire once for every identity removed, including the members and event removed along with a [Token] or [Key].
// Hooks fire after all removals are done, in the order the removals happened.
// Stale tokens and unknown identities are ignored.
//
// An [ErrInvalidArgument] error is returned if no identities are given.
func (c *Channel[K]) Evict(ids ...Identity) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: nothing to evict", ErrInvalidArgument)
	}
	var (
		hooks   []func()
		cancels []func()
	)
	syncx.LockFunc(&c.mux, func() {
		for _, id := range ids {
			switch id := id.(type) {
			case Token:
				hooks = c.evictToken(id, hooks)
			case keyIdentity[K]:
				hooks = c.evictKey(id.key, hooks)
			case *Deferred:
				if cancel, ok := c.cancellable[id]; ok {
					cancels = append(cancels, cancel)
				}
				hooks = c.takeHook(id, hooks)
			}
		}
	})
	if len(hooks) > 0 || len(cancels) > 0 {
		c.log.Debug("Evicted", "hooks", len(hooks), "cancelled", len(cancels))
	}
	for _, hook := range hooks {
		hook()
	}
	for _, cancel := range cancels {
		cancel()
	}
	return nil
}

func (c *Channel[K]) evictToken(token Token, hooks []func()) []func() {
	e, ok := c.arena.get(token)
	if !ok {
		return hooks
	}
	event, reg := e.key, c.registry(e.kind)
	c.arena.release(token)
	hooks = c.takeHook(token, hooks)
	if members, ok := reg[event]; ok {
		members.Remove(token)
		if members.Len() == 0 {
			delete(reg, event)
			hooks = c.takeHook(keyIdentity[K]{key: event}, hooks)
		}
	}
	return hooks
}

func (c *Channel[K]) evictKey(event K, hooks []func()) []func() {
	for _, reg := range []map[K]*set.Ordered[Token]{c.listeners, c.caches} {
		members, ok := reg[event]
		if !ok {
			continue
		}
		delete(reg, event)
		for _, token := range members.Clear() {
			c.arena.release(token)
			hooks = c.takeHook(token, hooks)
		}
	}
	return c.takeHook(keyIdentity[K]{key: event}, hooks)
}

// WatchTeardown registers hook to be called once, the first time id is removed with [Channel.Evict].
// A token's members and events removed as part of a larger eviction count as removed.
// Only one hook is kept per identity, a second call replaces the first.
//
// Tokens that are replaced by an exclusive subscriber, or drained by replay, are not evicted, and their hooks are dropped without being called.
// Watching a stale [Token] or a settled [*Deferred] registers nothing.
//
// The returned function unregisters hook without evicting anything. It does nothing if hook was already called or replaced.
func (c *Channel[K]) WatchTeardown(id Identity, hook func()) (unwatch func(), err error) {
	if hook == nil {
		return func() {}, fmt.Errorf("%w: nil teardown hook", ErrInvalidArgument)
	}
	if id == nil {
		return func() {}, fmt.Errorf("%w: nil identity", ErrInvalidArgument)
	}
	w := &watch{hook: hook}
	registered := syncx.LockFuncT(&c.mux, func() bool {
		switch id := id.(type) {
		case Token:
			if _, ok := c.arena.get(id); !ok {
				return false
			}
		case *Deferred:
			if id.Settled() {
				return false
			}
		}
		c.watches[id] = w
		return true
	})
	if !registered {
		return func() {}, nil
	}
	return func() {
		syncx.LockFunc(&c.mux, func() {
			if c.watches[id] == w {
				delete(c.watches, id)
			}
		})
	}, nil
}
