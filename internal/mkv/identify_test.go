package mkv

import (
	"context"
	"testing"
)

func TestIdentifyDecodesContainer(t *testing.T) {
	container, err := identifyWith(context.Background(), fixtureProbe(identifyFixture), "mkvmerge", "movie.mkv")
	if err != nil {
		t.Fatalf("identify returned error: %v", err)
	}

	if container.Info.Properties.Title != "Movie" {
		t.Fatalf("unexpected title %q", container.Info.Properties.Title)
	}
	if len(container.Tracks) != 4 {
		t.Fatalf("expected 4 tracks, got %d", len(container.Tracks))
	}

	audio := container.TracksOfType("audio")
	if len(audio) != 2 {
		t.Fatalf("expected 2 audio tracks, got %d", len(audio))
	}
	if audio[0].Properties.TrackName != "Stereo" {
		t.Fatalf("unexpected audio track name %q", audio[0].Properties.TrackName)
	}

	track, ok := container.TrackByID(3)
	if !ok || track.Type != "subtitles" {
		t.Fatalf("expected subtitle track 3, got %#v ok=%v", track, ok)
	}
	if _, ok := container.TrackByID(9); ok {
		t.Fatal("track 9 should not exist")
	}

	if container.ChapterCount() != 12 {
		t.Fatalf("expected 12 chapters, got %d", container.ChapterCount())
	}
	if len(container.Attachments) != 1 || container.Attachments[0].FileName != "cover.jpg" {
		t.Fatalf("unexpected attachments %#v", container.Attachments)
	}
}

func TestIdentifyRejectsUnrecognized(t *testing.T) {
	payload := `{"container": {"recognized": false}}`
	if _, err := identifyWith(context.Background(), fixtureProbe(payload), "mkvmerge", "noise.bin"); err == nil {
		t.Fatal("expected error for unrecognized container")
	}
}

func TestIdentifyRejectsEmptyPath(t *testing.T) {
	if _, err := identifyWith(context.Background(), fixtureProbe(identifyFixture), "mkvmerge", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestIdentifyRejectsBadJSON(t *testing.T) {
	if _, err := identifyWith(context.Background(), fixtureProbe("not json"), "mkvmerge", "movie.mkv"); err == nil {
		t.Fatal("expected error for undecodable output")
	}
}
