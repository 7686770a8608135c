package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scriptkit/internal/deps"
	"scriptkit/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check external binaries and environment preflights",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			checks := []preflight.Result{
				preflight.CheckDiskSpace(cfg.Paths.CacheDir, cfg.MKV.MinFreeSpaceMB),
			}
			if !offline {
				checks = append(checks, preflight.CheckBrewAPI(cmd.Context(), cfg.Brew.APIBaseURL, nil))
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"binaries":   statuses,
					"preflights": checks,
				})
			}

			rows := make([][]string, 0, len(statuses)+len(checks))
			for _, status := range statuses {
				state := "ok"
				detail := status.Command
				if !status.Available {
					state = "missing"
					detail = status.Detail
					if status.Optional {
						state = "missing (optional)"
					}
				}
				rows = append(rows, []string{status.Name, state, detail, status.Description})
			}
			for _, check := range checks {
				state := "ok"
				if !check.Passed {
					state = "failed"
				}
				rows = append(rows, []string{check.Name, state, check.Detail, ""})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Check", "Status", "Detail", "Used for"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required binaries: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip network reachability checks")

	return cmd
}
