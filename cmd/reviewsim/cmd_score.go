package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/reviewsim/internal/api"
	"github.com/tensorplex-labs/reviewsim/internal/scoring"
	"github.com/tensorplex-labs/reviewsim/pkg/simapi"
	"github.com/tensorplex-labs/reviewsim/pkg/simclient"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Break down the weight of a single review",
		Long: `Scores one review under a weight system and prints each factor's raw
sub-score, its weight and its contribution to the final weight.

--order places the review on a 0..100 submission scale (0 is first)
instead of using --review-time in hours.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			req := simapi.ScoreRequest{}
			req.WeightSystem, _ = flags.GetString("weights")
			req.Stake, _ = flags.GetFloat64("stake")
			req.MaxStake, _ = flags.GetFloat64("max-stake")
			req.Reputation, _ = flags.GetFloat64("reputation")
			req.ReviewTime, _ = flags.GetFloat64("review-time")
			req.Holdings, _ = flags.GetFloat64("holdings")
			req.TotalHoldings, _ = flags.GetFloat64("total-holdings")
			if flags.Changed("order") {
				order, _ := flags.GetFloat64("order")
				req.SubmissionOrder = &order
			}

			var (
				resp *simapi.ScoreResponse
				err  error
			)
			if remote, _ := flags.GetBool("remote"); remote {
				client, cerr := simclient.NewFromEnv(cmd.Context())
				if cerr != nil {
					return cerr
				}
				defer client.Close()
				resp, err = client.Score(cmd.Context(), req)
			} else {
				resp, err = scoreLocally(req)
			}
			if err != nil {
				return err
			}

			if jsonOut, _ := flags.GetBool("json"); jsonOut {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			return writeBreakdown(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().String("weights", scoring.SystemCurrent, "Weight system: current or community")
	cmd.Flags().Float64("stake", 100, "Stake committed to the review")
	cmd.Flags().Float64("max-stake", 500, "Total stake across reviewers")
	cmd.Flags().Float64("reputation", 1, "Reviewer reputation")
	cmd.Flags().Float64("review-time", 12, "Hours taken to submit the review")
	cmd.Flags().Float64("order", 0, "Submission order on a 0..100 scale")
	cmd.Flags().Float64("holdings", 1000, "Reviewer token holdings")
	cmd.Flags().Float64("total-holdings", 5000, "Token holdings across reviewers")
	return cmd
}

func scoreLocally(req simapi.ScoreRequest) (*simapi.ScoreResponse, error) {
	cfg, opts, in, err := api.ScoreInputs(req)
	if err != nil {
		return nil, err
	}
	scorer, err := scoring.NewScorer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	resp := api.FromBreakdown(scorer.Score(in))
	return &resp, nil
}

func writeBreakdown(w io.Writer, resp *simapi.ScoreResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "System: %s\n\n", resp.System)
	fmt.Fprintln(tw, "Factor\tRaw\tWeight\tContribution")
	for _, c := range resp.Components {
		fmt.Fprintf(tw, "%s\t%.4f\t%.2f\t%.4f\n", c.Factor, c.Raw, c.Weight, c.Weighted)
	}
	fmt.Fprintf(tw, "\nFinal weight:\t%.4f\n", resp.Total)
	return tw.Flush()
}
