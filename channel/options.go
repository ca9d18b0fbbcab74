package channel

import (
	"fmt"
	"log/slog"
)

// Toggle is a flag that may be left unset, so it defers to a broader level of configuration.
type Toggle int8

const (
	Unset Toggle = iota // Unset defers to the next level of configuration.
	On                  // On explicitly enables the flag.
	Off                 // Off explicitly disables the flag.
)

// ToggleOf translates a bool into an explicit [Toggle].
func ToggleOf(enabled bool) Toggle {
	if enabled {
		return On
	}
	return Off
}

func (t Toggle) IsSet() bool {
	return t == On || t == Off
}

// Or returns the value of the [Toggle] if it's set, and fallback otherwise.
func (t Toggle) Or(fallback bool) bool {
	switch t {
	case On:
		return true
	case Off:
		return false
	default:
		return fallback
	}
}

func (t Toggle) valid() bool {
	return t == Unset || t.IsSet()
}

func (t Toggle) String() string {
	switch t {
	case Unset:
		return "unset"
	case On:
		return "on"
	case Off:
		return "off"
	default:
		return fmt.Sprintf("Toggle(%d)", int8(t))
	}
}

// Options is a partial override of channel behavior. Each flag is resolved on its own, so an override only needs to set what it changes.
type Options struct {
	// ReplayCache buffers publishes that have no listener, and replays them to the next subscriber.
	ReplayCache Toggle
	// ReplayOnce keeps at most the most recent buffered publish per event.
	ReplayOnce Toggle
	// ExclusiveListen discards the existing listeners for an event when a new one subscribes.
	ExclusiveListen Toggle
}

// Merge returns a copy of o with every flag that's set in other applied over it.
func (o Options) Merge(other Options) Options {
	if other.ReplayCache.IsSet() {
		o.ReplayCache = other.ReplayCache
	}
	if other.ReplayOnce.IsSet() {
		o.ReplayOnce = other.ReplayOnce
	}
	if other.ExclusiveListen.IsSet() {
		o.ExclusiveListen = other.ExclusiveListen
	}
	return o
}

func (o Options) validate() error {
	if !o.ReplayCache.valid() || !o.ReplayOnce.valid() || !o.ExclusiveListen.valid() {
		return fmt.Errorf("%w: options %+v contain an unknown toggle value", ErrInvalidArgument, o)
	}
	return nil
}

// Resolved is the effective set of flags for one event.
type Resolved struct {
	ReplayCache     bool
	ReplayOnce      bool
	ExclusiveListen bool
}

// Defaults is the lowest level of configuration, used when neither the event nor the channel override a flag.
// Changing it affects every channel, including those already created.
var Defaults = Resolved{
	ReplayCache:     true,
	ReplayOnce:      false,
	ExclusiveListen: false,
}

// Resolve applies the event-level override over the channel-level override over [Defaults].
func Resolve(event, channel Options) Resolved {
	return Resolved{
		ReplayCache:     event.ReplayCache.Or(channel.ReplayCache.Or(Defaults.ReplayCache)),
		ReplayOnce:      event.ReplayOnce.Or(channel.ReplayOnce.Or(Defaults.ReplayOnce)),
		ExclusiveListen: event.ExclusiveListen.Or(channel.ExclusiveListen.Or(Defaults.ExclusiveListen)),
	}
}

type chanConf[K comparable] struct {
	options    Options
	keyOptions map[K]Options
	logger     *slog.Logger
}

// ConfigFunc customizes a [Channel] at construction.
// Returning an error fails construction.
type ConfigFunc[K comparable] func(conf *chanConf[K]) error

// WithOptions sets the channel-level override.
func WithOptions[K comparable](opts Options) ConfigFunc[K] {
	return func(conf *chanConf[K]) error {
		if err := opts.validate(); err != nil {
			return err
		}
		conf.options = opts
		return nil
	}
}

// WithKeyOptions adds an override for each event in the table.
// The table is copied, so later changes to it have no effect on the [Channel].
func WithKeyOptions[K comparable](table map[K]Options) ConfigFunc[K] {
	return func(conf *chanConf[K]) error {
		for key, opts := range table {
			if err := opts.validate(); err != nil {
				return fmt.Errorf("event %v: %w", key, err)
			}
		}
		for key, opts := range table {
			conf.keyOptions[key] = opts
		}
		return nil
	}
}

// WithKeyOption adds an override for a single event.
func WithKeyOption[K comparable](key K, opts Options) ConfigFunc[K] {
	return WithKeyOptions(map[K]Options{key: opts})
}

// WithLogger sets the logger used for debug tracing of channel operations.
func WithLogger[K comparable](logger *slog.Logger) ConfigFunc[K] {
	return func(conf *chanConf[K]) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", ErrInvalidArgument)
		}
		conf.logger = logger
		return nil
	}
}
