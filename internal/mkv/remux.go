package mkv

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"scriptkit/internal/logging"
)

// StripRequest describes a track-stripping remux. Track IDs refer to the
// mkvmerge -J identification of the source. An empty keep list combined
// with the matching Remove flag drops the whole track class.
type StripRequest struct {
	Path            string
	Output          string // empty means replace Path in place
	AudioTracks     []int
	SubtitleTracks  []int
	RemoveAudio     bool
	RemoveSubtitles bool
}

// StripResult reports the outcome of a remux.
type StripResult struct {
	OutputPath    string
	KeptAudio     []int
	KeptSubtitles []int
}

// Remuxer rebuilds containers with a subset of tracks using mkvmerge.
type Remuxer struct {
	binary string
	logger *slog.Logger
	run    commandRunner
	probe  outputRunner
}

// NewRemuxer constructs a remuxer around the mkvmerge binary.
func NewRemuxer(binary string, logger *slog.Logger) *Remuxer {
	return &Remuxer{
		binary: binaryOr(binary, "mkvmerge"),
		logger: logging.NewComponentLogger(logger, "remux"),
		run:    defaultCommandRunner,
		probe:  defaultOutputRunner,
	}
}

// WithCommandRunner injects a custom command runner for tests.
func (r *Remuxer) WithCommandRunner(run commandRunner) {
	if r != nil && run != nil {
		r.run = run
	}
}

// WithOutputRunner injects a custom identify runner for tests.
func (r *Remuxer) WithOutputRunner(run outputRunner) {
	if r != nil && run != nil {
		r.probe = run
	}
}

// Strip remuxes the container keeping only the requested tracks. When the
// request replaces the source, the remux writes to a temp sibling and
// renames on success so an interrupted run never corrupts the original.
func (r *Remuxer) Strip(ctx context.Context, req StripRequest) (StripResult, error) {
	if r == nil {
		return StripResult{}, fmt.Errorf("remuxer not initialized")
	}
	if strings.TrimSpace(req.Path) == "" {
		return StripResult{}, fmt.Errorf("mkv path is required")
	}
	if _, err := os.Stat(req.Path); err != nil {
		return StripResult{}, fmt.Errorf("source file: %w", err)
	}
	if req.RemoveAudio && len(req.AudioTracks) > 0 {
		return StripResult{}, fmt.Errorf("cannot both remove audio and keep audio tracks")
	}
	if req.RemoveSubtitles && len(req.SubtitleTracks) > 0 {
		return StripResult{}, fmt.Errorf("cannot both remove subtitles and keep subtitle tracks")
	}
	if !req.RemoveAudio && !req.RemoveSubtitles && len(req.AudioTracks) == 0 && len(req.SubtitleTracks) == 0 {
		return StripResult{}, fmt.Errorf("no track changes requested")
	}

	container, err := identifyWith(ctx, r.probe, r.binary, req.Path)
	if err != nil {
		return StripResult{}, err
	}
	if err := validateTrackClass(container, req.AudioTracks, "audio"); err != nil {
		return StripResult{}, err
	}
	if err := validateTrackClass(container, req.SubtitleTracks, "subtitles"); err != nil {
		return StripResult{}, err
	}

	inPlace := strings.TrimSpace(req.Output) == ""
	output := req.Output
	if inPlace {
		dir := filepath.Dir(req.Path)
		base := filepath.Base(req.Path)
		output = filepath.Join(dir, ".strip-"+base+".tmp")
	}

	args := []string{"-o", output}
	switch {
	case req.RemoveAudio:
		args = append(args, "--no-audio")
	case len(req.AudioTracks) > 0:
		args = append(args, "--audio-tracks", joinIDs(req.AudioTracks))
	}
	switch {
	case req.RemoveSubtitles:
		args = append(args, "--no-subtitles")
	case len(req.SubtitleTracks) > 0:
		args = append(args, "--subtitle-tracks", joinIDs(req.SubtitleTracks))
	}
	args = append(args, req.Path)

	r.logger.Debug("executing mkvmerge",
		logging.String("path", req.Path),
		logging.String("output", output),
		logging.Bool("in_place", inPlace),
	)
	if err := r.run(ctx, r.binary, args...); err != nil {
		_ = os.Remove(output)
		return StripResult{}, fmt.Errorf("mkvmerge failed: %w", err)
	}
	if _, err := os.Stat(output); err != nil {
		return StripResult{}, fmt.Errorf("mkvmerge did not produce output file: %w", err)
	}

	finalPath := output
	if inPlace {
		if err := os.Rename(output, req.Path); err != nil {
			_ = os.Remove(output)
			return StripResult{}, fmt.Errorf("replace original: %w", err)
		}
		finalPath = req.Path
	}

	return StripResult{
		OutputPath:    finalPath,
		KeptAudio:     sortedIDs(req.AudioTracks),
		KeptSubtitles: sortedIDs(req.SubtitleTracks),
	}, nil
}

func validateTrackClass(container Container, ids []int, trackType string) error {
	for _, id := range ids {
		track, ok := container.TrackByID(id)
		if !ok {
			return fmt.Errorf("track %d not present", id)
		}
		if !strings.EqualFold(track.Type, trackType) {
			return fmt.Errorf("track %d is %s, not %s", id, track.Type, trackType)
		}
	}
	return nil
}

func joinIDs(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range sortedIDs(ids) {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}

func sortedIDs(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	out := append([]int(nil), ids...)
	sort.Ints(out)
	return out
}
