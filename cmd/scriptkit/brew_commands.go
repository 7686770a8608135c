package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"scriptkit/internal/brewtap"
	"scriptkit/internal/brewtap/cache"
	"scriptkit/internal/logging"
)

func newBrewCommand(ctx *commandContext) *cobra.Command {
	brewCmd := &cobra.Command{
		Use:   "brew",
		Short: "Homebrew tap utilities",
	}

	brewCmd.AddCommand(newBrewCompareCommand(ctx))

	return brewCmd
}

func newBrewCompareCommand(ctx *commandContext) *cobra.Command {
	var noCache bool
	var formulae []string

	cmd := &cobra.Command{
		Use:   "compare [TAP]",
		Short: "Compare local tap formula versions against formulae.brew.sh",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.commandLogger(cmd)
			if err != nil {
				return err
			}

			tap := cfg.Brew.Tap
			if len(args) > 0 {
				tap = strings.TrimSpace(args[0])
			}
			if tap == "" && len(formulae) == 0 {
				return errors.New("no tap given and none configured (set brew.tap or pass one)")
			}

			local := brewtap.NewLocalClient(cfg.BrewBinary())
			remote := brewtap.NewRemoteClient(
				cfg.Brew.APIBaseURL,
				time.Duration(cfg.Brew.RequestTimeout)*time.Second,
				nil,
			)

			var versionCache brewtap.VersionCache
			if cfg.Brew.CacheEnabled && !noCache {
				store, err := cache.Open(cmd.Context(), cfg.BrewCachePath())
				if err != nil {
					logger.Warn("version cache unavailable", logging.Error(err))
				} else {
					defer store.Close()
					versionCache = store
				}
			}

			ttl := time.Duration(cfg.Brew.CacheTTLHours) * time.Hour
			service := brewtap.NewService(local, remote, versionCache, ttl, logger)

			var comparisons []brewtap.Comparison
			if len(formulae) > 0 {
				comparisons, err = service.CompareFormulae(cmd.Context(), formulae)
			} else {
				comparisons, err = service.CompareTap(cmd.Context(), tap)
			}
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, comparisons)
			}
			printComparisons(cmd, comparisons)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the upstream version cache")
	cmd.Flags().StringArrayVar(&formulae, "formula", nil, "Compare a specific formula instead of a whole tap (repeatable)")

	return cmd
}

func printComparisons(cmd *cobra.Command, comparisons []brewtap.Comparison) {
	rows := make([][]string, 0, len(comparisons))
	outdated := 0
	for _, comparison := range comparisons {
		if comparison.Status == brewtap.StatusOutdated {
			outdated++
		}
		status := string(comparison.Status)
		if comparison.Detail != "" {
			status = fmt.Sprintf("%s (%s)", status, comparison.Detail)
		}
		rows = append(rows, []string{
			comparison.Name,
			comparison.Local,
			comparison.Upstream,
			status,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"Formula", "Local", "Upstream", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
	))
	fmt.Fprintf(out, "%d formulae, %d outdated\n", len(comparisons), outdated)
}
