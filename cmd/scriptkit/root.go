package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"scriptkit/internal/logging"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var logFormatFlag string
	var jsonFlag bool

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag, &jsonFlag)

	rootCmd := &cobra.Command{
		Use:           "scriptkit",
		Short:         "Personal toolkit for Matroska editing, tag stripping, and more",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(logging.WithRunID(cmd.Context(), shortRunID()))
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.closeLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format (console, json)")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Emit machine-readable JSON where supported")

	rootCmd.AddCommand(newMKVCommand(ctx))
	rootCmd.AddCommand(newAudioCommand(ctx))
	rootCmd.AddCommand(newBrewCommand(ctx))
	rootCmd.AddCommand(newBalancerCommand(ctx))
	rootCmd.AddCommand(newShortsCommand(ctx))
	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func shortRunID() string {
	return uuid.NewString()[:8]
}
