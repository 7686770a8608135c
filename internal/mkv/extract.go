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

// ExtractRequest describes an mkvextract run.
type ExtractRequest struct {
	Path        string
	OutDir      string
	TrackIDs    []int
	Chapters    bool
	Attachments bool
}

// ExtractResult reports the files mkvextract produced.
type ExtractResult struct {
	TrackFiles      map[int]string
	ChaptersFile    string
	AttachmentFiles map[int]string
}

// Extractor pulls tracks, chapters, and attachments out of a container.
type Extractor struct {
	binary   string
	identify string
	logger   *slog.Logger
	run      commandRunner
	probe    outputRunner
}

// NewExtractor constructs an extractor. binary is the mkvextract command,
// identifyBinary the mkvmerge command used to resolve output names.
func NewExtractor(binary, identifyBinary string, logger *slog.Logger) *Extractor {
	return &Extractor{
		binary:   binaryOr(binary, "mkvextract"),
		identify: binaryOr(identifyBinary, "mkvmerge"),
		logger:   logging.NewComponentLogger(logger, "extract"),
		run:      defaultCommandRunner,
		probe:    defaultOutputRunner,
	}
}

// WithCommandRunner injects a custom command runner for tests.
func (e *Extractor) WithCommandRunner(r commandRunner) {
	if e != nil && r != nil {
		e.run = r
	}
}

// WithOutputRunner injects a custom identify runner for tests.
func (e *Extractor) WithOutputRunner(r outputRunner) {
	if e != nil && r != nil {
		e.probe = r
	}
}

// Extract runs mkvextract for the requested pieces. Output files land in
// req.OutDir (created if missing) named after the source file.
func (e *Extractor) Extract(ctx context.Context, req ExtractRequest) (ExtractResult, error) {
	if e == nil {
		return ExtractResult{}, fmt.Errorf("extractor not initialized")
	}
	if strings.TrimSpace(req.Path) == "" {
		return ExtractResult{}, fmt.Errorf("mkv path is required")
	}
	if len(req.TrackIDs) == 0 && !req.Chapters && !req.Attachments {
		return ExtractResult{}, fmt.Errorf("nothing to extract")
	}
	if _, err := os.Stat(req.Path); err != nil {
		return ExtractResult{}, fmt.Errorf("source file: %w", err)
	}

	outDir := strings.TrimSpace(req.OutDir)
	if outDir == "" {
		outDir = filepath.Dir(req.Path)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return ExtractResult{}, fmt.Errorf("create output directory: %w", err)
	}

	container, err := identifyWith(ctx, e.probe, e.identify, req.Path)
	if err != nil {
		return ExtractResult{}, err
	}

	result := ExtractResult{
		TrackFiles:      make(map[int]string),
		AttachmentFiles: make(map[int]string),
	}
	stem := strings.TrimSuffix(filepath.Base(req.Path), filepath.Ext(req.Path))
	args := []string{req.Path}

	if len(req.TrackIDs) > 0 {
		ids := append([]int(nil), req.TrackIDs...)
		sort.Ints(ids)
		specs := make([]string, 0, len(ids))
		for _, id := range ids {
			track, ok := container.TrackByID(id)
			if !ok {
				return ExtractResult{}, fmt.Errorf("track %d not present in %s", id, req.Path)
			}
			name := fmt.Sprintf("%s.track%d%s", stem, id, extensionForCodec(track.Properties.CodecID))
			dest := filepath.Join(outDir, name)
			result.TrackFiles[id] = dest
			specs = append(specs, strconv.Itoa(id)+":"+dest)
		}
		args = append(args, "tracks")
		args = append(args, specs...)
	}

	if req.Chapters {
		if container.ChapterCount() == 0 {
			return ExtractResult{}, fmt.Errorf("%s has no chapters", req.Path)
		}
		dest := filepath.Join(outDir, stem+".chapters.xml")
		result.ChaptersFile = dest
		args = append(args, "chapters", dest)
	}

	if req.Attachments {
		if len(container.Attachments) == 0 {
			return ExtractResult{}, fmt.Errorf("%s has no attachments", req.Path)
		}
		args = append(args, "attachments")
		for _, attachment := range container.Attachments {
			name := attachment.FileName
			if name == "" {
				name = fmt.Sprintf("%s.attachment%d", stem, attachment.ID)
			}
			dest := filepath.Join(outDir, name)
			result.AttachmentFiles[attachment.ID] = dest
			args = append(args, strconv.Itoa(attachment.ID)+":"+dest)
		}
	}

	e.logger.Debug("executing mkvextract",
		logging.String("path", req.Path),
		logging.Int("tracks", len(result.TrackFiles)),
		logging.Bool("chapters", req.Chapters),
		logging.Bool("attachments", req.Attachments),
	)
	if err := e.run(ctx, e.binary, args...); err != nil {
		return ExtractResult{}, fmt.Errorf("mkvextract failed: %w", err)
	}
	return result, nil
}

// extensionForCodec maps Matroska codec IDs to conventional raw-stream
// extensions. Unknown codecs fall back to .bin.
func extensionForCodec(codecID string) string {
	switch strings.ToUpper(strings.TrimSpace(codecID)) {
	case "V_MPEG4/ISO/AVC":
		return ".h264"
	case "V_MPEGH/ISO/HEVC":
		return ".h265"
	case "V_AV1":
		return ".ivf"
	case "V_VP9", "V_VP8":
		return ".ivf"
	case "A_AAC":
		return ".aac"
	case "A_AC3", "A_EAC3":
		return ".ac3"
	case "A_DTS":
		return ".dts"
	case "A_TRUEHD":
		return ".thd"
	case "A_FLAC":
		return ".flac"
	case "A_OPUS":
		return ".opus"
	case "A_VORBIS":
		return ".ogg"
	case "A_MPEG/L3":
		return ".mp3"
	case "A_PCM/INT/LIT", "A_PCM/INT/BIG":
		return ".wav"
	case "S_TEXT/UTF8", "S_TEXT/ASCII":
		return ".srt"
	case "S_TEXT/ASS", "S_TEXT/SSA":
		return ".ass"
	case "S_VOBSUB":
		return ".sub"
	case "S_HDMV/PGS":
		return ".sup"
	default:
		return ".bin"
	}
}
