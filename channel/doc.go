/*
Package channel provides an in-process event channel: publish/subscribe keyed by event, with replay of publishes that happened before anyone was listening.

# Primitives

A [Channel] is keyed by any comparable event type chosen by the caller.
Listeners are registered with [Channel.Subscribe] and receive every [Param] passed to [Channel.Publish] for their event, in the order they subscribed.
A [Listener] may return a value, which is handed back to request/response publishers.

Subscribing returns a [Token], and buffering a publish does too.
A Token is a handle, not a reference. Once the listener or publish it names is gone the Token goes stale, and using it does nothing.

# Options

Three flags change how an event behaves, see [Options]:

  - ReplayCache (default on) buffers publishes that have no listener, and replays them to the next subscriber.
  - ReplayOnce (default off) keeps only the most recent buffered publish.
  - ExclusiveListen (default off) makes a new subscriber replace the existing ones.

Each flag resolves independently: an override for the event wins, then the override for the channel, then [Defaults].

# Request/response

[Channel.PublishResult] passes every listener's return value to a [ResultFunc].
[Channel.PublishOnceResult] only passes the first one.
[Channel.PublishSync] returns the first result directly, but never waits: if nobody is listening right now, there is no result.
[Channel.PublishDeferred] returns a [Deferred] that does wait, and may be cancelled.

# Teardown

[Channel.Evict] removes listeners, buffered publishes, whole events, and cancels a [Deferred].
[Channel.WatchTeardown] registers a hook for when one of those is evicted.
Being replaced by an exclusive subscriber, or drained by replay, isn't eviction and doesn't fire hooks.
*/
package channel
