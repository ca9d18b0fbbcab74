// Package config loads channel option overrides from YAML or TOML files.
package config
