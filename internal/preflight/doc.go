// Package preflight runs environment checks before destructive or
// long-running operations: binary availability, free disk space, and
// Homebrew API reachability.
package preflight
