// Package audiotags strips metadata tags from audio files by rewriting the
// container with ffmpeg while copying every stream untouched.
package audiotags

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"scriptkit/internal/ffprobe"
	"scriptkit/internal/logging"
)

type commandRunner func(ctx context.Context, name string, args ...string) error

type prober func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// StripRequest describes a single tag-stripping run.
type StripRequest struct {
	Path string
	// KeepChapters preserves chapter markers while dropping tags.
	KeepChapters bool
}

// StripResult reports the outcome for one file.
type StripResult struct {
	Path    string
	Skipped bool
	Detail  string
}

// Stripper rewrites audio containers without their metadata.
type Stripper struct {
	ffmpeg     string
	ffprobeBin string
	extensions map[string]bool
	logger     *slog.Logger
	run        commandRunner
	probe      prober
}

// NewStripper constructs a tag stripper. extensions is the lowercase
// allow-list without dots; an empty list allows nothing.
func NewStripper(ffmpegBinary, ffprobeBinary string, extensions []string, logger *slog.Logger) *Stripper {
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(ext, ".")))
		if ext != "" {
			allowed[ext] = true
		}
	}
	stripper := &Stripper{
		ffmpeg:     binaryOr(ffmpegBinary, "ffmpeg"),
		ffprobeBin: binaryOr(ffprobeBinary, "ffprobe"),
		extensions: allowed,
		logger:     logging.NewComponentLogger(logger, "audiotags"),
		probe:      ffprobe.Inspect,
	}
	stripper.run = stripper.defaultRun
	return stripper
}

// WithCommandRunner injects a custom ffmpeg runner for tests.
func (s *Stripper) WithCommandRunner(r commandRunner) {
	if s != nil && r != nil {
		s.run = r
	}
}

// WithProber injects a custom ffprobe implementation for tests.
func (s *Stripper) WithProber(p prober) {
	if s != nil && p != nil {
		s.probe = p
	}
}

// Strip removes all metadata from one file. The rewrite lands in a temp
// sibling that replaces the original only after ffprobe confirms the
// stream layout survived and the tags are gone.
func (s *Stripper) Strip(ctx context.Context, req StripRequest) (StripResult, error) {
	if s == nil {
		return StripResult{}, fmt.Errorf("stripper not initialized")
	}
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return StripResult{}, fmt.Errorf("audio path is required")
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !s.extensions[ext] {
		return StripResult{}, fmt.Errorf("%s: extension %q not in the allow-list", path, ext)
	}
	if _, err := os.Stat(path); err != nil {
		return StripResult{}, fmt.Errorf("source file: %w", err)
	}

	before, err := s.probe(ctx, s.ffprobeBin, path)
	if err != nil {
		return StripResult{}, err
	}
	if !before.HasMetadataTags() {
		return StripResult{Path: path, Skipped: true, Detail: "no metadata tags present"}, nil
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmpPath := filepath.Join(dir, ".strip-"+base)

	args := []string{"-hide_banner", "-loglevel", "error", "-y", "-i", path, "-map", "0", "-map_metadata", "-1"}
	if !req.KeepChapters {
		args = append(args, "-map_chapters", "-1")
	}
	args = append(args, "-c", "copy", tmpPath)

	s.logger.Debug("executing ffmpeg",
		logging.String("path", path),
		logging.Bool("keep_chapters", req.KeepChapters),
	)
	if err := s.run(ctx, s.ffmpeg, args...); err != nil {
		_ = os.Remove(tmpPath)
		return StripResult{}, fmt.Errorf("ffmpeg failed: %w", err)
	}

	after, err := s.probe(ctx, s.ffprobeBin, tmpPath)
	if err != nil {
		_ = os.Remove(tmpPath)
		return StripResult{}, fmt.Errorf("verify stripped file: %w", err)
	}
	if after.AudioStreamCount() != before.AudioStreamCount() {
		_ = os.Remove(tmpPath)
		return StripResult{}, fmt.Errorf("%s: audio stream count changed from %d to %d",
			path, before.AudioStreamCount(), after.AudioStreamCount())
	}
	if after.HasMetadataTags() {
		_ = os.Remove(tmpPath)
		return StripResult{}, fmt.Errorf("%s: metadata tags survived the rewrite", path)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return StripResult{}, fmt.Errorf("replace original: %w", err)
	}
	return StripResult{Path: path, Detail: "tags removed"}, nil
}

func (s *Stripper) defaultRun(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func binaryOr(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
