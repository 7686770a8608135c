// Package mkv wraps the mkvtoolnix suite: container identification via
// mkvmerge -J, in-place property edits via mkvpropedit, track and chapter
// extraction via mkvextract, and track-stripping remuxes via mkvmerge.
//
// In-place operations never leave a partially written target: remuxes
// write to a temp sibling and rename, and property edits run inside a
// BackupSession that restores the original on failure.
package mkv
