package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scriptkit/internal/shorts"
)

type shortsRewrite struct {
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

func newShortsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "shorts URL...",
		Short:       "Rewrite YouTube Shorts links to regular watch URLs",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]shortsRewrite, 0, len(args))
			failed := 0
			for _, raw := range args {
				result := shortsRewrite{Input: raw}
				watch, err := shorts.Rewrite(raw)
				if err != nil {
					failed++
					result.Error = err.Error()
				} else {
					result.Output = watch
				}
				results = append(results, result)
			}

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				errOut := cmd.ErrOrStderr()
				for _, result := range results {
					if result.Error != "" {
						fmt.Fprintln(errOut, result.Error)
						continue
					}
					fmt.Fprintln(out, result.Output)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d URLs could not be rewritten", failed, len(args))
			}
			return nil
		},
	}
}
