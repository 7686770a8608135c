package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"scriptkit/internal/balancer"
)

func newBalancerCommand(ctx *commandContext) *cobra.Command {
	balancerCmd := &cobra.Command{
		Use:         "balancer",
		Short:       "Plan Satisfactory splitter layouts",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	balancerCmd.AddCommand(newBalancerPlanCommand(ctx))
	balancerCmd.AddCommand(newBalancerCleanCommand(ctx))

	return balancerCmd
}

func parseFanOut(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("fan-out must be an integer, got %q", arg)
	}
	return n, nil
}

func newBalancerPlanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plan N",
		Short: "Compute the cheapest splitter layout for a fan-out",
		Long: `Compute a splitter layout producing at least N outputs. The target
is rounded up to the next clean size (a product of 2s and 3s), and the
layer ordering minimizing the total splitter count is chosen.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseFanOut(args[0])
			if err != nil {
				return err
			}
			plan, err := balancer.BuildPlan(n)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, plan)
			}

			out := cmd.OutOrStdout()
			twos, threes, err := balancer.Factorize(plan.Size)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Requested outputs: %d\n", plan.Requested)
			fmt.Fprintf(out, "Planned outputs:   %d (2^%d * 3^%d)\n", plan.Size, twos, threes)

			if len(plan.Layers) == 0 {
				fmt.Fprintln(out, "No splitters needed.")
				return nil
			}

			rows := make([][]string, 0, len(plan.Layers))
			outputs := 1
			for i, layer := range plan.Layers {
				outputs *= layer.Arity
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					fmt.Sprintf("1-to-%d", layer.Arity),
					strconv.Itoa(layer.Splitters),
					strconv.Itoa(outputs),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Layer", "Splitter", "Count", "Outputs"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight},
			))
			fmt.Fprintf(out, "Total splitters: %d\n", plan.TotalSplitters)
			return nil
		},
	}
}

func newBalancerCleanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clean N",
		Short: "Show the nearest clean fan-out sizes around N",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseFanOut(args[0])
			if err != nil {
				return err
			}
			next, err := balancer.NextCleanSize(n)
			if err != nil {
				return err
			}
			prev, err := balancer.PrevCleanSize(n)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"requested": n,
					"clean":     balancer.IsClean(n),
					"next":      next,
					"previous":  prev,
				})
			}

			out := cmd.OutOrStdout()
			if balancer.IsClean(n) {
				fmt.Fprintf(out, "%d is a clean size.\n", n)
				return nil
			}
			fmt.Fprintf(out, "%d is not a clean size.\n", n)
			fmt.Fprintf(out, "Next clean size:     %d\n", next)
			fmt.Fprintf(out, "Previous clean size: %d\n", prev)
			return nil
		},
	}
}
