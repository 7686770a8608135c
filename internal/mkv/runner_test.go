package mkv

import (
	"context"
)

const identifyFixture = `{
  "file_name": "movie.mkv",
  "container": {"type": "Matroska", "recognized": true, "supported": true,
    "properties": {"title": "Movie", "duration": 5400000000000}},
  "tracks": [
    {"id": 0, "type": "video", "codec": "HEVC/H.265/MPEG-H",
     "properties": {"number": 1, "codec_id": "V_MPEGH/ISO/HEVC", "language": "und", "default_track": true}},
    {"id": 1, "type": "audio", "codec": "FLAC",
     "properties": {"number": 2, "codec_id": "A_FLAC", "language": "eng", "track_name": "Stereo", "default_track": true, "audio_channels": 2}},
    {"id": 2, "type": "audio", "codec": "AC-3",
     "properties": {"number": 3, "codec_id": "A_AC3", "language": "jpn", "audio_channels": 6}},
    {"id": 3, "type": "subtitles", "codec": "SubRip/SRT",
     "properties": {"number": 4, "codec_id": "S_TEXT/UTF8", "language": "eng", "forced_track": false}}
  ],
  "chapters": [{"num_entries": 12}],
  "attachments": [{"id": 1, "file_name": "cover.jpg", "content_type": "image/jpeg", "size": 4096}]
}`

type recordedCommand struct {
	name string
	args []string
}

// recordingRunner captures invocations and returns err for each.
func recordingRunner(calls *[]recordedCommand, err error) commandRunner {
	return func(_ context.Context, name string, args ...string) error {
		*calls = append(*calls, recordedCommand{name: name, args: append([]string(nil), args...)})
		return err
	}
}

func fixtureProbe(payload string) outputRunner {
	return func(context.Context, string, ...string) ([]byte, error) {
		return []byte(payload), nil
	}
}
