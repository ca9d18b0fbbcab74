package config

import (
	"errors"
	"fmt"
	"github.com/pelletier/go-toml/v2"
	"github.com/saylorsolutions/evchan/channel"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrInvalidArgument is the same as [channel.ErrInvalidArgument], so errors.Is works for both.
var ErrInvalidArgument = channel.ErrInvalidArgument

var ErrUnknownFormat = errors.New("unknown config format")

// Format is the syntax of a config document.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
)

const (
	flagReplayCache     = "replay-cache"
	flagReplayOnce      = "replay-once"
	flagExclusiveListen = "exclusive-listen"

	sectionOptions = "options"
	sectionEvents  = "events"
)

// Document is the set of option overrides read from a config file.
//
// In YAML it looks like this, and TOML has the same shape:
//
//	options:
//	  replay-cache: true
//	events:
//	  status:
//	    replay-once: true
//	  audit:
//	    replay-cache: false
type Document struct {
	Options channel.Options
	Events  map[string]channel.Options
}

// ConfigFuncs returns the channel configuration that applies this [Document].
func (d *Document) ConfigFuncs() []channel.ConfigFunc[string] {
	if d == nil {
		return nil
	}
	return []channel.ConfigFunc[string]{
		channel.WithOptions[string](d.Options),
		channel.WithKeyOptions(d.Events),
	}
}

// FormatOf picks a [Format] from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Load reads and parses the config file at path, using its extension to pick the [Format].
func Load(path string) (*Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes data in the given [Format].
// An [ErrInvalidArgument] error is returned if "options" isn't a mapping of flags, "events" isn't a mapping of mappings,
// or a flag is unknown or not a boolean.
func Parse(data []byte, format Format) (*Document, error) {
	var raw any
	switch format {
	case YAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
	case TOML:
		var table map[string]any
		if err := toml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("parsing toml: %w", err)
		}
		raw = table
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return fromRaw(raw)
}

func fromRaw(raw any) (*Document, error) {
	doc := &Document{Events: map[string]channel.Options{}}
	if raw == nil {
		return doc, nil
	}
	top, ok := asMapping(raw)
	if !ok {
		return nil, fmt.Errorf("%w: document must be a mapping, got %T", ErrInvalidArgument, raw)
	}
	for key, val := range top {
		switch key {
		case sectionOptions:
			opts, err := parseOptions(val)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", sectionOptions, err)
			}
			doc.Options = opts
		case sectionEvents:
			events, ok := asMapping(val)
			if !ok {
				return nil, fmt.Errorf("%w: %s must be a mapping of event options, got %T", ErrInvalidArgument, sectionEvents, val)
			}
			for event, eventVal := range events {
				opts, err := parseOptions(eventVal)
				if err != nil {
					return nil, fmt.Errorf("%s.%s: %w", sectionEvents, event, err)
				}
				doc.Events[event] = opts
			}
		default:
			return nil, fmt.Errorf("%w: unknown section %q", ErrInvalidArgument, key)
		}
	}
	return doc, nil
}

func parseOptions(raw any) (channel.Options, error) {
	var opts channel.Options
	if raw == nil {
		return opts, nil
	}
	flags, ok := asMapping(raw)
	if !ok {
		return opts, fmt.Errorf("%w: options must be a mapping, got %T", ErrInvalidArgument, raw)
	}
	for name, val := range flags {
		enabled, ok := val.(bool)
		if !ok {
			return opts, fmt.Errorf("%w: %s must be a boolean, got %T", ErrInvalidArgument, name, val)
		}
		switch name {
		case flagReplayCache:
			opts.ReplayCache = channel.ToggleOf(enabled)
		case flagReplayOnce:
			opts.ReplayOnce = channel.ToggleOf(enabled)
		case flagExclusiveListen:
			opts.ExclusiveListen = channel.ToggleOf(enabled)
		default:
			return opts, fmt.Errorf("%w: unknown flag %q, expected one of %s", ErrInvalidArgument, name, strings.Join(Flags(), ", "))
		}
	}
	return opts, nil
}

// Flags lists the flag names recognized in config documents.
func Flags() []string {
	flags := []string{flagReplayCache, flagReplayOnce, flagExclusiveListen}
	slices.Sort(flags)
	return flags
}

// asMapping normalizes the mapping types produced by the yaml and toml decoders.
// Non-string keys, like a numeric event name in YAML, are formatted as strings.
func asMapping(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, true
	default:
		return nil, false
	}
}
