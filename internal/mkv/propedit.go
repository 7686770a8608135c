package mkv

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"scriptkit/internal/logging"
)

// TrackEdit describes property changes for a single track. Nil fields are
// left untouched. Track is the mkvmerge track ID (0-based).
type TrackEdit struct {
	Track    int
	Name     *string
	Language *string
	Default  *bool
	Forced   *bool
}

// PropEditRequest describes an in-place mkvpropedit run.
type PropEditRequest struct {
	Path       string
	Title      *string
	TrackEdits []TrackEdit
}

// Editor applies property edits with mkvpropedit.
type Editor struct {
	binary   string
	identify string
	logger   *slog.Logger
	run      commandRunner
	probe    outputRunner
}

// NewEditor constructs a property editor. binary is the mkvpropedit
// command, identifyBinary the mkvmerge command used for validation.
func NewEditor(binary, identifyBinary string, logger *slog.Logger) *Editor {
	return &Editor{
		binary:   binaryOr(binary, "mkvpropedit"),
		identify: binaryOr(identifyBinary, "mkvmerge"),
		logger:   logging.NewComponentLogger(logger, "propedit"),
		run:      defaultCommandRunner,
		probe:    defaultOutputRunner,
	}
}

// WithCommandRunner injects a custom command runner for tests.
func (e *Editor) WithCommandRunner(r commandRunner) {
	if e != nil && r != nil {
		e.run = r
	}
}

// WithOutputRunner injects a custom identify runner for tests.
func (e *Editor) WithOutputRunner(r outputRunner) {
	if e != nil && r != nil {
		e.probe = r
	}
}

// Apply validates the request against the container layout and runs
// mkvpropedit. The target file is modified in place; callers that need
// rollback wrap the call in a BackupSession.
func (e *Editor) Apply(ctx context.Context, req PropEditRequest) error {
	if e == nil {
		return fmt.Errorf("editor not initialized")
	}
	if strings.TrimSpace(req.Path) == "" {
		return fmt.Errorf("mkv path is required")
	}
	if req.Title == nil && len(req.TrackEdits) == 0 {
		return fmt.Errorf("no edits requested")
	}
	if _, err := os.Stat(req.Path); err != nil {
		return fmt.Errorf("source file: %w", err)
	}

	container, err := identifyWith(ctx, e.probe, e.identify, req.Path)
	if err != nil {
		return err
	}
	if err := validateTrackEdits(container, req.TrackEdits); err != nil {
		return err
	}

	args := buildPropEditArgs(req)
	e.logger.Debug("executing mkvpropedit",
		logging.String("path", req.Path),
		logging.Int("track_edits", len(req.TrackEdits)),
		logging.Bool("title", req.Title != nil),
	)
	if err := e.run(ctx, e.binary, args...); err != nil {
		return fmt.Errorf("mkvpropedit failed: %w", err)
	}
	return nil
}

func validateTrackEdits(container Container, edits []TrackEdit) error {
	seen := make(map[int]bool, len(edits))
	for _, edit := range edits {
		if _, ok := container.TrackByID(edit.Track); !ok {
			ids := make([]int, 0, len(container.Tracks))
			for _, track := range container.Tracks {
				ids = append(ids, track.ID)
			}
			sort.Ints(ids)
			return fmt.Errorf("track %d not present (available: %v)", edit.Track, ids)
		}
		if seen[edit.Track] {
			return fmt.Errorf("track %d edited more than once", edit.Track)
		}
		seen[edit.Track] = true
		if edit.Name == nil && edit.Language == nil && edit.Default == nil && edit.Forced == nil {
			return fmt.Errorf("track %d: no properties to change", edit.Track)
		}
	}
	return nil
}

func buildPropEditArgs(req PropEditRequest) []string {
	args := []string{req.Path}
	if req.Title != nil {
		args = append(args, "--edit", "info", "--set", "title="+*req.Title)
	}
	for _, edit := range req.TrackEdits {
		// mkvpropedit track selectors are 1-based; mkvmerge IDs are 0-based.
		args = append(args, "--edit", "track:"+strconv.Itoa(edit.Track+1))
		if edit.Name != nil {
			args = append(args, "--set", "name="+*edit.Name)
		}
		if edit.Language != nil {
			args = append(args, "--set", "language="+*edit.Language)
		}
		if edit.Default != nil {
			args = append(args, "--set", "flag-default="+boolFlag(*edit.Default))
		}
		if edit.Forced != nil {
			args = append(args, "--set", "flag-forced="+boolFlag(*edit.Forced))
		}
	}
	return args
}

func boolFlag(value bool) string {
	if value {
		return "1"
	}
	return "0"
}

func binaryOr(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
