package channel

import (
	"github.com/saylorsolutions/evchan/slogx"
	"github.com/saylorsolutions/evchan/structures/set"
	"github.com/saylorsolutions/evchan/syncx"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

var lastID atomic.Uint64

// Param is a single argument passed along with a publish.
type Param any

// Listener handles a publish, and may return a result for request/response publishers.
type Listener func(params ...Param) any

// ResultFunc receives the return value of a [Listener] for request/response publishes.
type ResultFunc func(result any)

// Identity is anything that can be passed to [Channel.Evict] or [Channel.WatchTeardown]:
// a [Token], an event wrapped with [Key], or a [*Deferred].
type Identity interface {
	identity()
}

func (Token) identity() {}

type keyIdentity[K comparable] struct {
	key K
}

func (keyIdentity[K]) identity() {}

// Key wraps an event so it can be used as an [Identity].
// Evicting a Key removes every listener and buffered publish for the event.
func Key[K comparable](event K) Identity {
	return keyIdentity[K]{key: event}
}

type watch struct {
	hook func()
}

// Channel is an in-process publish/subscribe hub keyed by event.
//
// All operations are synchronous. Listeners, result callbacks, and teardown hooks are called without any internal lock held, so they may call back into the Channel.
// A Channel is safe for concurrent use, but delivery order is only defined for calls made from one goroutine.
type Channel[K comparable] struct {
	id  uint64
	log *slog.Logger

	mux         sync.RWMutex
	options     Options
	keyOptions  map[K]Options
	arena       arena[K]
	listeners   map[K]*set.Ordered[Token]
	caches      map[K]*set.Ordered[Token]
	watches     map[Identity]*watch
	cancellable map[*Deferred]func()
	deferrals   map[Token]*Deferred
}

// New creates a [Channel] with the given configuration.
// An [ErrInvalidArgument] error is returned if any [ConfigFunc] rejects its input.
func New[K comparable](configs ...ConfigFunc[K]) (*Channel[K], error) {
	conf := chanConf[K]{
		keyOptions: map[K]Options{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, fn := range configs {
		if fn == nil {
			continue
		}
		if err := fn(&conf); err != nil {
			return nil, err
		}
	}
	id := lastID.Add(1)
	return &Channel[K]{
		id:          id,
		log:         slog.New(slogx.NewDedupeHandler(conf.logger.Handler())).With("channel", id),
		options:     conf.options,
		keyOptions:  conf.keyOptions,
		listeners:   map[K]*set.Ordered[Token]{},
		caches:      map[K]*set.Ordered[Token]{},
		watches:     map[Identity]*watch{},
		cancellable: map[*Deferred]func(){},
		deferrals:   map[Token]*Deferred{},
	}, nil
}

// ID is unique to this [Channel] in the process, and is only meant for correlating logs.
func (c *Channel[K]) ID() uint64 {
	return c.id
}

// Resolved returns the effective options for the event.
func (c *Channel[K]) Resolved(event K) Resolved {
	return syncx.RLockFuncT(&c.mux, func() Resolved {
		return c.resolve(event)
	})
}

// Listening returns the number of listeners registered for the event.
func (c *Channel[K]) Listening(event K) int {
	return syncx.RLockFuncT(&c.mux, func() int {
		if members := c.listeners[event]; members != nil {
			return members.Len()
		}
		return 0
	})
}

// Buffered returns the number of publishes waiting for a listener on the event.
func (c *Channel[K]) Buffered(event K) int {
	return syncx.RLockFuncT(&c.mux, func() int {
		if members := c.caches[event]; members != nil {
			return members.Len()
		}
		return 0
	})
}

// Alive reports whether the token still names a registered listener or a buffered publish.
func (c *Channel[K]) Alive(token Token) bool {
	return syncx.RLockFuncT(&c.mux, func() bool {
		_, ok := c.arena.get(token)
		return ok
	})
}

func (c *Channel[K]) resolve(event K) Resolved {
	return Resolve(c.keyOptions[event], c.options)
}

func (c *Channel[K]) registry(kind entryKind) map[K]*set.Ordered[Token] {
	if kind == kindListener {
		return c.listeners
	}
	return c.caches
}

func (c *Channel[K]) members(kind entryKind, event K) *set.Ordered[Token] {
	reg := c.registry(kind)
	members, ok := reg[event]
	if !ok {
		members = set.NewOrdered[Token]()
		reg[event] = members
	}
	return members
}

// discard releases a token without firing its teardown hook.
// It's used for replacement and replay, which aren't removals the caller asked for.
// A [Deferred] backed by the token is forgotten too, so a superseded one isn't held for the life of the Channel.
func (c *Channel[K]) discard(token Token) {
	c.arena.release(token)
	delete(c.watches, token)
	if d, ok := c.deferrals[token]; ok {
		delete(c.deferrals, token)
		delete(c.cancellable, d)
		delete(c.watches, d)
	}
}

func (c *Channel[K]) takeHook(id Identity, hooks []func()) []func() {
	w, ok := c.watches[id]
	if !ok {
		return hooks
	}
	delete(c.watches, id)
	return append(hooks, w.hook)
}
