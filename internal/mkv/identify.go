package mkv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Container is the decoded result of mkvmerge -J identification.
type Container struct {
	FileName    string       `json:"file_name"`
	Info        Info         `json:"container"`
	Tracks      []Track      `json:"tracks"`
	Chapters    []Chapters   `json:"chapters"`
	Attachments []Attachment `json:"attachments"`
}

// Info describes container-level properties.
type Info struct {
	Type       string         `json:"type"`
	Recognized bool           `json:"recognized"`
	Supported  bool           `json:"supported"`
	Properties InfoProperties `json:"properties"`
}

// InfoProperties holds selected container properties.
type InfoProperties struct {
	Title    string `json:"title"`
	Duration int64  `json:"duration"`
	Muxing   string `json:"muxing_application"`
	Writing  string `json:"writing_application"`
}

// Track describes a single Matroska track.
type Track struct {
	ID         int             `json:"id"`
	Type       string          `json:"type"`
	Codec      string          `json:"codec"`
	Properties TrackProperties `json:"properties"`
}

// TrackProperties holds selected per-track properties.
type TrackProperties struct {
	Number       int    `json:"number"`
	CodecID      string `json:"codec_id"`
	Language     string `json:"language"`
	TrackName    string `json:"track_name"`
	DefaultTrack bool   `json:"default_track"`
	ForcedTrack  bool   `json:"forced_track"`
	Channels     int    `json:"audio_channels"`
}

// Chapters reports a chapter edition entry count.
type Chapters struct {
	NumEntries int `json:"num_entries"`
}

// Attachment describes an attached file.
type Attachment struct {
	ID          int    `json:"id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Identify runs mkvmerge -J against path and decodes the container layout.
func Identify(ctx context.Context, binary string, path string) (Container, error) {
	return identifyWith(ctx, defaultOutputRunner, binary, path)
}

func identifyWith(ctx context.Context, run outputRunner, binary string, path string) (Container, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "mkvmerge"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Container{}, errors.New("identify: empty path")
	}

	output, err := run(ctx, binary, "-J", path)
	if err != nil {
		return Container{}, fmt.Errorf("identify %s: %w", path, err)
	}

	var container Container
	if err := json.Unmarshal(output, &container); err != nil {
		return Container{}, fmt.Errorf("identify %s: parse mkvmerge output: %w", path, err)
	}
	if !container.Info.Recognized {
		return Container{}, fmt.Errorf("identify %s: container not recognized by mkvmerge", path)
	}
	if container.FileName == "" {
		container.FileName = path
	}
	return container, nil
}

// TrackByID returns the track with the given mkvmerge track ID.
func (c Container) TrackByID(id int) (Track, bool) {
	for _, track := range c.Tracks {
		if track.ID == id {
			return track, true
		}
	}
	return Track{}, false
}

// TracksOfType returns all tracks of the given type (video, audio, subtitles).
func (c Container) TracksOfType(trackType string) []Track {
	var matched []Track
	for _, track := range c.Tracks {
		if strings.EqualFold(track.Type, trackType) {
			matched = append(matched, track)
		}
	}
	return matched
}

// ChapterCount returns the total chapter entries across editions.
func (c Container) ChapterCount() int {
	total := 0
	for _, edition := range c.Chapters {
		total += edition.NumEntries
	}
	return total
}
