package env

import (
	"github.com/saylorsolutions/evchan/channel"
	"os"
	"slices"
	"strings"
)

var (
	DefaultTrue  = []string{"1", "yes", "true", "on"}  // DefaultTrue are the values considered "true" when using [Bool] and [Toggle], and can be changed.
	DefaultFalse = []string{"0", "no", "false", "off"} // DefaultFalse are the values considered "false" when using [Bool] and [Toggle], and can be changed.
)

// Val will get the trimmed value of an environment variable.
// If the variable isn't set, or is blank, then the defaultVal will be returned.
// Keys are compared case-insensitive.
func Val(key string, defaultVal string) string {
	for _, kv := range os.Environ() {
		name, val, found := strings.Cut(kv, "=")
		if !found || !strings.EqualFold(name, key) {
			continue
		}
		if trimmed := strings.TrimSpace(val); len(trimmed) > 0 {
			return trimmed
		}
		return defaultVal
	}
	return defaultVal
}

// Toggle interprets an environment variable as a [channel.Toggle] using [DefaultTrue] and [DefaultFalse].
// A variable that isn't set, is blank, or doesn't match either list is [channel.Unset], so it defers to the next level of configuration.
func Toggle(key string) channel.Toggle {
	sval := strings.ToLower(Val(key, ""))
	switch {
	case len(sval) == 0:
		return channel.Unset
	case slices.ContainsFunc(DefaultTrue, func(s string) bool { return strings.EqualFold(s, sval) }):
		return channel.On
	case slices.ContainsFunc(DefaultFalse, func(s string) bool { return strings.EqualFold(s, sval) }):
		return channel.Off
	default:
		return channel.Unset
	}
}

// Bool interprets an environment variable as a boolean, returning defaultVal if it isn't clearly true or false.
func Bool(key string, defaultVal bool) bool {
	return Toggle(key).Or(defaultVal)
}

// Options reads a channel-level override from environment variables with the given prefix:
// PREFIX_REPLAY_CACHE, PREFIX_REPLAY_ONCE, and PREFIX_EXCLUSIVE_LISTEN.
func Options(prefix string) channel.Options {
	if len(prefix) > 0 && !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}
	return channel.Options{
		ReplayCache:     Toggle(prefix + "REPLAY_CACHE"),
		ReplayOnce:      Toggle(prefix + "REPLAY_ONCE"),
		ExclusiveListen: Toggle(prefix + "EXCLUSIVE_LISTEN"),
	}
}
