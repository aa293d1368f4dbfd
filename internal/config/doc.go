// Package config loads the conview configuration file and watches it
// for live reload. Configuration is TOML; a missing file yields the
// built-in defaults.
package config
