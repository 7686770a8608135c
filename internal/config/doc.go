// Package config loads, normalizes, and validates the scriptkit TOML
// configuration file.
package config
