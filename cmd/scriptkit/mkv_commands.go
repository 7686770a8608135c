package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"scriptkit/internal/mkv"
	"scriptkit/internal/preflight"
)

func newMKVCommand(ctx *commandContext) *cobra.Command {
	mkvCmd := &cobra.Command{
		Use:   "mkv",
		Short: "Inspect and edit Matroska containers",
	}

	mkvCmd.AddCommand(newMKVTracksCommand(ctx))
	mkvCmd.AddCommand(newMKVEditCommand(ctx))
	mkvCmd.AddCommand(newMKVExtractCommand(ctx))
	mkvCmd.AddCommand(newMKVStripCommand(ctx))

	return mkvCmd
}

func newMKVTracksCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tracks FILE...",
		Short: "List container and track metadata",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			containers := make([]mkv.Container, 0, len(args))
			for _, path := range args {
				container, err := mkv.Identify(cmd.Context(), cfg.MkvmergeBinary(), path)
				if err != nil {
					return err
				}
				containers = append(containers, container)
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, containers)
			}
			out := cmd.OutOrStdout()
			for i, container := range containers {
				if i > 0 {
					fmt.Fprintln(out)
				}
				printContainer(out, container)
			}
			return nil
		},
	}
}

func printContainer(out io.Writer, container mkv.Container) {
	fmt.Fprintf(out, "File: %s\n", container.FileName)
	if title := container.Info.Properties.Title; title != "" {
		fmt.Fprintf(out, "Title: %s\n", title)
	}
	fmt.Fprintf(out, "Container: %s\n", container.Info.Type)
	if ns := container.Info.Properties.Duration; ns > 0 {
		fmt.Fprintf(out, "Duration: %s\n", time.Duration(ns).Round(time.Second))
	}
	if chapters := container.ChapterCount(); chapters > 0 {
		fmt.Fprintf(out, "Chapters: %d\n", chapters)
	}
	if len(container.Attachments) > 0 {
		names := make([]string, 0, len(container.Attachments))
		for _, attachment := range container.Attachments {
			names = append(names, attachment.FileName)
		}
		fmt.Fprintf(out, "Attachments: %s\n", strings.Join(names, ", "))
	}

	rows := make([][]string, 0, len(container.Tracks))
	for _, track := range container.Tracks {
		channels := ""
		if track.Properties.Channels > 0 {
			channels = strconv.Itoa(track.Properties.Channels)
		}
		rows = append(rows, []string{
			strconv.Itoa(track.ID),
			track.Type,
			track.Codec,
			mkv.LanguageDisplayName(track.Properties.Language),
			track.Properties.TrackName,
			yesNo(track.Properties.DefaultTrack),
			yesNo(track.Properties.ForcedTrack),
			channels,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Type", "Codec", "Language", "Name", "Default", "Forced", "Channels"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	))
}

func newMKVEditCommand(ctx *commandContext) *cobra.Command {
	var title string
	var trackSpecs []string
	var keepBackup bool

	cmd := &cobra.Command{
		Use:   "edit FILE",
		Short: "Edit container and track properties in place",
		Long: `Edit Matroska properties in place with mkvpropedit. The file is
backed up with checksum verification and locked for the duration of the
edit; a failed or interrupted edit restores the original.

With no flags and a terminal attached, an interactive track menu is shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.commandLogger(cmd)
			if err != nil {
				return err
			}
			path := args[0]

			if !cmd.Flags().Changed("keep-backup") {
				keepBackup = cfg.MKV.KeepBackups
			}

			req := mkv.PropEditRequest{Path: path}
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			for _, spec := range trackSpecs {
				edit, err := parseTrackEditSpec(spec)
				if err != nil {
					return err
				}
				req.TrackEdits = append(req.TrackEdits, edit)
			}

			if req.Title == nil && len(req.TrackEdits) == 0 {
				if !stdoutIsTerminal() {
					return errors.New("no edits requested: pass --title or --track")
				}
				edit, err := promptTrackEdit(cmd, cfg.MkvmergeBinary(), path)
				if err != nil {
					return err
				}
				req.TrackEdits = append(req.TrackEdits, edit)
			}

			session, err := mkv.NewBackupSession(path, logger)
			if err != nil {
				return err
			}
			defer session.Close()

			editor := mkv.NewEditor(cfg.MkvpropeditBinary(), cfg.MkvmergeBinary(), logger)
			if err := editor.Apply(cmd.Context(), req); err != nil {
				if restoreErr := session.Restore(); restoreErr != nil {
					return fmt.Errorf("edit failed: %w (restore also failed: %v)", err, restoreErr)
				}
				return fmt.Errorf("edit failed, original restored: %w", err)
			}
			if err := session.Commit(keepBackup); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Updated %s\n", path)
			if keepBackup {
				fmt.Fprintf(out, "Backup kept at %s\n", session.BackupPath())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New container title (empty clears it)")
	cmd.Flags().StringArrayVar(&trackSpecs, "track", nil,
		"Track edit as ID:field=value[,field=value...]; fields: name, language, default, forced")
	cmd.Flags().BoolVar(&keepBackup, "keep-backup", false, "Keep the backup copy after a successful edit (default: configured mkv.keep_backups)")

	return cmd
}

// promptTrackEdit shows a numbered track menu and reads one edit from stdin.
func promptTrackEdit(cmd *cobra.Command, identifyBinary, path string) (mkv.TrackEdit, error) {
	container, err := mkv.Identify(cmd.Context(), identifyBinary, path)
	if err != nil {
		return mkv.TrackEdit{}, err
	}
	out := cmd.OutOrStdout()
	printContainer(out, container)

	reader := bufio.NewReader(cmd.InOrStdin())
	readLine := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	idLine, err := readLine("Track ID to edit: ")
	if err != nil {
		return mkv.TrackEdit{}, err
	}
	id, err := strconv.Atoi(strings.TrimSpace(idLine))
	if err != nil {
		return mkv.TrackEdit{}, fmt.Errorf("invalid track ID %q", idLine)
	}
	if _, ok := container.TrackByID(id); !ok {
		return mkv.TrackEdit{}, fmt.Errorf("track %d not present in %s", id, path)
	}

	edit := mkv.TrackEdit{Track: id}
	name, err := readLine("New name (blank keeps current): ")
	if err != nil {
		return mkv.TrackEdit{}, err
	}
	if name != "" {
		edit.Name = &name
	}
	lang, err := readLine("New language code (blank keeps current): ")
	if err != nil {
		return mkv.TrackEdit{}, err
	}
	if lang = strings.TrimSpace(lang); lang != "" {
		edit.Language = &lang
	}
	if edit.Name == nil && edit.Language == nil {
		return mkv.TrackEdit{}, errors.New("nothing to change")
	}
	return edit, nil
}

func newMKVExtractCommand(ctx *commandContext) *cobra.Command {
	var tracksFlag string
	var chapters bool
	var attachments bool
	var outDir string

	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "Extract tracks, chapters, or attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.commandLogger(cmd)
			if err != nil {
				return err
			}

			trackIDs, err := parseIDList(tracksFlag)
			if err != nil {
				return err
			}
			if len(trackIDs) == 0 && !chapters && !attachments {
				return errors.New("nothing to extract: pass --tracks, --chapters, or --attachments")
			}

			if check := preflight.CheckDiskSpace(outDir, cfg.MKV.MinFreeSpaceMB); !check.Passed {
				return fmt.Errorf("disk space preflight: %s", check.Detail)
			}

			extractor := mkv.NewExtractor(cfg.MkvextractBinary(), cfg.MkvmergeBinary(), logger)
			result, err := extractor.Extract(cmd.Context(), mkv.ExtractRequest{
				Path:        args[0],
				OutDir:      outDir,
				TrackIDs:    trackIDs,
				Chapters:    chapters,
				Attachments: attachments,
			})
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			for _, id := range sortedKeys(result.TrackFiles) {
				fmt.Fprintf(out, "Track %d -> %s\n", id, result.TrackFiles[id])
			}
			if result.ChaptersFile != "" {
				fmt.Fprintf(out, "Chapters -> %s\n", result.ChaptersFile)
			}
			for _, id := range sortedKeys(result.AttachmentFiles) {
				fmt.Fprintf(out, "Attachment %d -> %s\n", id, result.AttachmentFiles[id])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tracksFlag, "tracks", "", "Comma-separated track IDs to extract")
	cmd.Flags().BoolVar(&chapters, "chapters", false, "Extract chapters as XML")
	cmd.Flags().BoolVar(&attachments, "attachments", false, "Extract all attachments")
	cmd.Flags().StringVar(&outDir, "out", ".", "Output directory")

	return cmd
}

func sortedKeys(m map[int]string) []int {
	keys := make([]int, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Ints(keys)
	return keys
}

func newMKVStripCommand(ctx *commandContext) *cobra.Command {
	var audioTracks string
	var subtitleTracks string
	var keepAudio bool
	var keepSubs bool
	var output string

	cmd := &cobra.Command{
		Use:   "strip FILE",
		Short: "Remux keeping only selected audio and subtitle tracks",
		Long: `Rebuild the container with mkvmerge, keeping only the requested
audio and subtitle tracks. Without --out the file is replaced atomically
via a temporary sibling.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.commandLogger(cmd)
			if err != nil {
				return err
			}

			audioIDs, err := parseIDList(audioTracks)
			if err != nil {
				return err
			}
			subtitleIDs, err := parseIDList(subtitleTracks)
			if err != nil {
				return err
			}

			target := filepath.Dir(args[0])
			if output != "" {
				target = filepath.Dir(output)
			}
			if check := preflight.CheckDiskSpace(target, cfg.MKV.MinFreeSpaceMB); !check.Passed {
				return fmt.Errorf("disk space preflight: %s", check.Detail)
			}

			remuxer := mkv.NewRemuxer(cfg.MkvmergeBinary(), logger)
			result, err := remuxer.Strip(cmd.Context(), mkv.StripRequest{
				Path:            args[0],
				Output:          output,
				AudioTracks:     audioIDs,
				SubtitleTracks:  subtitleIDs,
				RemoveAudio:     !keepAudio,
				RemoveSubtitles: !keepSubs,
			})
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s\n", result.OutputPath)
			if len(result.KeptAudio) > 0 {
				fmt.Fprintf(out, "Kept audio tracks: %s\n", joinInts(result.KeptAudio))
			}
			if len(result.KeptSubtitles) > 0 {
				fmt.Fprintf(out, "Kept subtitle tracks: %s\n", joinInts(result.KeptSubtitles))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&audioTracks, "audio-tracks", "", "Comma-separated audio track IDs to keep")
	cmd.Flags().StringVar(&subtitleTracks, "subtitle-tracks", "", "Comma-separated subtitle track IDs to keep")
	cmd.Flags().BoolVar(&keepAudio, "keep-audio", true, "Keep audio tracks (disable to drop all audio)")
	cmd.Flags().BoolVar(&keepSubs, "keep-subs", true, "Keep subtitle tracks (disable to drop all subtitles)")
	cmd.Flags().StringVar(&output, "out", "", "Output path (default: replace the input in place)")

	return cmd
}

func joinInts(values []int) string {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		parts = append(parts, strconv.Itoa(value))
	}
	return strings.Join(parts, ",")
}
