package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/reviewsim/internal/config"
	"github.com/tensorplex-labs/reviewsim/internal/scoring"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List reviewer presets and weight systems",
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.Presets()
			systems := scoring.WeightSystems()

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"presets":        presets,
					"weight_systems": systems,
				})
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "Preset\tStake\tPool\tReviews\tReviewers\tHoldings\tReputation\tReview time")
			for _, p := range presets {
				fmt.Fprintf(tw, "%s\t%.0f\t%.0f\t%d\t%d\t%.0f\t%.1f\t%.0fh\n",
					p.Name, p.Params.BaseStake, p.Params.ProjectPool, p.Params.ReviewsPerCycle,
					p.Params.TotalReviewers, p.Params.TokenHoldings, p.Params.StartingReputation, p.Params.AvgReviewTime)
			}

			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "Weight system\tFactors")
			for _, ws := range systems {
				fmt.Fprintf(tw, "%s\t", ws.Name)
				for i, w := range ws.Weights {
					if i > 0 {
						fmt.Fprint(tw, ", ")
					}
					fmt.Fprintf(tw, "%s %.0f%%", w.Factor, w.Value*100)
				}
				fmt.Fprintln(tw)
			}
			return tw.Flush()
		},
	}
}
