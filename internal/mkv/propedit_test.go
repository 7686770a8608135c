package mkv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func stringPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func writeSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movie.mkv")
	if err := os.WriteFile(path, []byte("mkv"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func TestApplyBuildsArguments(t *testing.T) {
	path := writeSource(t)
	var calls []recordedCommand

	editor := NewEditor("mkvpropedit", "mkvmerge", nil)
	editor.WithCommandRunner(recordingRunner(&calls, nil))
	editor.WithOutputRunner(fixtureProbe(identifyFixture))

	req := PropEditRequest{
		Path:  path,
		Title: stringPtr("New Title"),
		TrackEdits: []TrackEdit{
			{Track: 1, Name: stringPtr("Commentary"), Language: stringPtr("eng"), Default: boolPtr(false)},
			{Track: 3, Forced: boolPtr(true)},
		},
	}
	if err := editor.Apply(context.Background(), req); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	if len(calls) != 1 {
		t.Fatalf("expected one mkvpropedit invocation, got %d", len(calls))
	}
	got := strings.Join(calls[0].args, " ")
	want := path + " --edit info --set title=New Title" +
		" --edit track:2 --set name=Commentary --set language=eng --set flag-default=0" +
		" --edit track:4 --set flag-forced=1"
	if got != want {
		t.Fatalf("argument mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestApplyRejectsUnknownTrack(t *testing.T) {
	path := writeSource(t)
	var calls []recordedCommand

	editor := NewEditor("", "", nil)
	editor.WithCommandRunner(recordingRunner(&calls, nil))
	editor.WithOutputRunner(fixtureProbe(identifyFixture))

	req := PropEditRequest{
		Path:       path,
		TrackEdits: []TrackEdit{{Track: 7, Name: stringPtr("x")}},
	}
	err := editor.Apply(context.Background(), req)
	if err == nil || !strings.Contains(err.Error(), "track 7 not present") {
		t.Fatalf("expected unknown-track error, got %v", err)
	}
	if len(calls) != 0 {
		t.Fatal("mkvpropedit must not run when validation fails")
	}
}

func TestApplyRejectsDuplicateTrack(t *testing.T) {
	path := writeSource(t)
	editor := NewEditor("", "", nil)
	editor.WithCommandRunner(recordingRunner(&[]recordedCommand{}, nil))
	editor.WithOutputRunner(fixtureProbe(identifyFixture))

	req := PropEditRequest{
		Path: path,
		TrackEdits: []TrackEdit{
			{Track: 1, Name: stringPtr("a")},
			{Track: 1, Name: stringPtr("b")},
		},
	}
	if err := editor.Apply(context.Background(), req); err == nil {
		t.Fatal("expected duplicate-track error")
	}
}

func TestApplyRejectsEmptyEdit(t *testing.T) {
	path := writeSource(t)
	editor := NewEditor("", "", nil)
	editor.WithOutputRunner(fixtureProbe(identifyFixture))

	if err := editor.Apply(context.Background(), PropEditRequest{Path: path}); err == nil {
		t.Fatal("expected error when no edits are requested")
	}
	if err := editor.Apply(context.Background(), PropEditRequest{
		Path:       path,
		TrackEdits: []TrackEdit{{Track: 1}},
	}); err == nil {
		t.Fatal("expected error for track edit without properties")
	}
}

func TestApplyRejectsMissingFile(t *testing.T) {
	editor := NewEditor("", "", nil)
	req := PropEditRequest{Path: filepath.Join(t.TempDir(), "absent.mkv"), Title: stringPtr("x")}
	if err := editor.Apply(context.Background(), req); err == nil {
		t.Fatal("expected error for missing source file")
	}
}
