package channel

import "errors"

var (
	// ErrInvalidArgument is returned synchronously when an operation is given a nil callback, no identities, or malformed options.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrCancelled rejects a [Deferred] whose backing publish was evicted before a listener returned a result.
	ErrCancelled = errors.New("manually cancelled")
	// ErrDropped rejects a [Deferred] when there was no listener and the replay cache is disabled for the event, so no result can ever arrive.
	ErrDropped = errors.New("publish dropped")
)
