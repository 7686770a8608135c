// Package brewtap compares formula versions in a Homebrew tap against the
// public formulae.brew.sh API.
package brewtap
