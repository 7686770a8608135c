package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scriptkit/internal/audiotags"
)

func newAudioCommand(ctx *commandContext) *cobra.Command {
	audioCmd := &cobra.Command{
		Use:   "audio",
		Short: "Audio file utilities",
	}

	audioCmd.AddCommand(newAudioStripCommand(ctx))

	return audioCmd
}

type audioStripReport struct {
	Path    string `json:"path"`
	Skipped bool   `json:"skipped,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error,omitempty"`
}

func newAudioStripCommand(ctx *commandContext) *cobra.Command {
	var jobs int
	var keepChapters bool

	cmd := &cobra.Command{
		Use:   "strip FILE...",
		Short: "Strip all tags and metadata from audio files",
		Long: `Rewrite audio files without tags or embedded metadata using a
stream copy. Each file is verified with ffprobe before being replaced
atomically; files that already carry no tags are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.commandLogger(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("jobs") {
				jobs = cfg.Audio.Jobs
			}

			stripper := audiotags.NewStripper(cfg.FFmpegBinary(), cfg.FFprobeBinary(), cfg.Audio.Extensions, logger)
			items := stripper.StripBatch(cmd.Context(), args, jobs, keepChapters)

			reports := make([]audioStripReport, 0, len(items))
			failed := 0
			for i, item := range items {
				report := audioStripReport{Path: args[i]}
				if item.Err != nil {
					failed++
					report.Error = item.Err.Error()
				} else {
					report.Skipped = item.Result.Skipped
					report.Detail = item.Result.Detail
				}
				reports = append(reports, report)
			}

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, reports); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				for _, report := range reports {
					switch {
					case report.Error != "":
						fmt.Fprintf(out, "FAIL  %s: %s\n", report.Path, report.Error)
					case report.Skipped:
						fmt.Fprintf(out, "skip  %s (%s)\n", report.Path, report.Detail)
					default:
						fmt.Fprintf(out, "done  %s\n", report.Path)
					}
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&jobs, "jobs", 0, "Concurrent ffmpeg runs (default: configured audio.jobs)")
	cmd.Flags().BoolVar(&keepChapters, "keep-chapters", false, "Preserve chapter markers while stripping tags")

	return cmd
}
