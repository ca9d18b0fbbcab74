/*
Package evchan is an in-process event channel with replay caching, request/response publishing, and teardown hooks.

The core lives in the channel package. The rest of the module is support for it:
ordered sets for the registries, a future for deferred results, slog helpers, option overrides from the environment or config files, and a small shell for driving a channel by hand.

A channel is scoped to the process and to whoever holds a reference to it. Nothing is persisted or sent over a network.
*/
package evchan
