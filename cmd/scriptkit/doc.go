// Command scriptkit bundles small media and utility tools behind one CLI:
// Matroska track inspection and editing, audio tag stripping, Homebrew tap
// version comparison, Satisfactory splitter planning, and YouTube Shorts
// URL rewriting.
package main
