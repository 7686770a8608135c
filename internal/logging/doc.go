// Package logging constructs slog loggers with console and JSON handlers
// and provides the structured attribute helpers used across scriptkit.
package logging
