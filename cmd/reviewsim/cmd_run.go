package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/reviewsim/internal/api"
	"github.com/tensorplex-labs/reviewsim/internal/config"
	"github.com/tensorplex-labs/reviewsim/internal/guard"
	"github.com/tensorplex-labs/reviewsim/internal/report"
	"github.com/tensorplex-labs/reviewsim/internal/scoring"
	"github.com/tensorplex-labs/reviewsim/internal/simulator"
	"github.com/tensorplex-labs/reviewsim/pkg/simapi"
	"github.com/tensorplex-labs/reviewsim/pkg/simclient"
)

// executor runs one scenario, locally or against the service.
type executor func(ctx context.Context, s *config.Scenario) (*simulator.Result, error)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate a reviewer over a series of review cycles",
		Long: `Runs the cycle simulator for a preset, a YAML scenario file, or both,
with individual values overridden by flags.

A run that stops early because a guard failed is not an error: the
committed cycles are printed together with the halt reason.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := scenarioFromFlags(cmd)
			if err != nil {
				return err
			}

			remote, _ := cmd.Flags().GetBool("remote")
			exec, cleanup, err := newExecutor(cmd.Context(), remote)
			if err != nil {
				return err
			}
			defer cleanup()

			jsonOut, _ := cmd.Flags().GetBool("json")
			compare, _ := cmd.Flags().GetBool("compare")
			if compare {
				return runComparison(cmd.Context(), cmd.OutOrStdout(), exec, scenario, jsonOut)
			}

			res, err := exec(cmd.Context(), scenario)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), struct {
					*simulator.Result
					Summary report.Summary `json:"summary"`
				}{res, report.Summarize(res)})
			}

			plot, _ := cmd.Flags().GetBool("plot")
			return renderResult(cmd.OutOrStdout(), res, plot)
		},
	}

	cmd.Flags().String("preset", "", "Reviewer preset: casual, dedicated or professional")
	cmd.Flags().String("scenario", "", "YAML scenario file")
	cmd.Flags().String("weights", "", "Weight system: current or community")
	cmd.Flags().String("law", "", "Reputation growth law: sqrt or linear")
	cmd.Flags().String("reward", "", "Reward model: pool_share or flat_split")
	cmd.Flags().Int("horizon", 0, "Number of cycles to simulate")
	cmd.Flags().Uint64("seed", 0, "Seed for luck and impact draws")
	cmd.Flags().Float64("luck-min", 0, "Lower bound of the reward luck multiplier")
	cmd.Flags().Float64("luck-max", 0, "Upper bound of the reward luck multiplier")

	cmd.Flags().Float64("base-stake", 0, "Stake committed per review")
	cmd.Flags().Float64("pool", 0, "Project reward pool per review")
	cmd.Flags().Int("reviews", 0, "Reviews per cycle")
	cmd.Flags().Int("reviewers", 0, "Total reviewers in the system")
	cmd.Flags().Float64("holdings", 0, "Starting token holdings")
	cmd.Flags().Float64("reputation", 0, "Starting reputation")
	cmd.Flags().Float64("review-time", 0, "Average review time in hours")
	cmd.Flags().Float64("total-holdings", 0, "Holdings across all reviewers (default holdings x reviewers)")

	cmd.Flags().Bool("compare", false, "Run every built-in weight system side by side")
	cmd.Flags().Bool("plot", true, "Draw balance, reward and reputation plots")
	return cmd
}

// scenarioFromFlags loads --scenario, if any, and applies every flag the user
// set explicitly on top of it.
func scenarioFromFlags(cmd *cobra.Command) (*config.Scenario, error) {
	flags := cmd.Flags()

	s := &config.Scenario{}
	if path, _ := flags.GetString("scenario"); path != "" {
		loaded, err := config.LoadScenario(path)
		if err != nil {
			return nil, err
		}
		s = loaded
	}

	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	str("preset", &s.Preset)
	str("weights", &s.WeightSystem)
	str("law", &s.GrowthLaw)
	str("reward", &s.RewardModel)

	if flags.Changed("weights") {
		s.Weights = nil
	}
	if flags.Changed("horizon") {
		s.Horizon, _ = flags.GetInt("horizon")
	}
	if flags.Changed("seed") {
		seed, _ := flags.GetUint64("seed")
		s.Seed = &seed
	}
	if flags.Changed("luck-min") || flags.Changed("luck-max") {
		luck := simulator.Luck{Min: 1, Max: 1}
		if s.Luck != nil {
			luck = *s.Luck
		}
		if flags.Changed("luck-min") {
			luck.Min, _ = flags.GetFloat64("luck-min")
		}
		if flags.Changed("luck-max") {
			luck.Max, _ = flags.GetFloat64("luck-max")
		}
		s.Luck = &luck
	}

	floatFlag := func(name string, dst **float64) {
		if flags.Changed(name) {
			v, _ := flags.GetFloat64(name)
			*dst = &v
		}
	}
	intFlag := func(name string, dst **int) {
		if flags.Changed(name) {
			v, _ := flags.GetInt(name)
			*dst = &v
		}
	}
	floatFlag("base-stake", &s.Overrides.BaseStake)
	floatFlag("pool", &s.Overrides.ProjectPool)
	intFlag("reviews", &s.Overrides.ReviewsPerCycle)
	intFlag("reviewers", &s.Overrides.TotalReviewers)
	floatFlag("holdings", &s.Overrides.TokenHoldings)
	floatFlag("reputation", &s.Overrides.StartingReputation)
	floatFlag("review-time", &s.Overrides.AvgReviewTime)
	floatFlag("total-holdings", &s.Overrides.TotalHoldings)

	return s, nil
}

func newExecutor(ctx context.Context, remote bool) (executor, func(), error) {
	if !remote {
		defaults, err := config.LoadSimEnv()
		if err != nil {
			return nil, nil, fmt.Errorf("loading simulation defaults: %w", err)
		}
		return func(_ context.Context, s *config.Scenario) (*simulator.Result, error) {
			params, opts, err := s.Resolve(*defaults)
			if err != nil {
				return nil, err
			}
			return simulator.New(opts...).Run(params)
		}, func() {}, nil
	}

	client, err := simclient.NewFromEnv(ctx)
	if err != nil {
		return nil, nil, err
	}
	return func(ctx context.Context, s *config.Scenario) (*simulator.Result, error) {
		resp, err := client.Simulate(ctx, requestFromScenario(s))
		if err != nil {
			return nil, err
		}
		return resultFromResponse(resp), nil
	}, client.Close, nil
}

func requestFromScenario(s *config.Scenario) simapi.SimulateRequest {
	req := simapi.SimulateRequest{
		Preset:             s.Preset,
		WeightSystem:       s.WeightSystem,
		GrowthLaw:          s.GrowthLaw,
		RewardModel:        s.RewardModel,
		Horizon:            s.Horizon,
		Seed:               s.Seed,
		BaseStake:          s.Overrides.BaseStake,
		ProjectPool:        s.Overrides.ProjectPool,
		ReviewsPerCycle:    s.Overrides.ReviewsPerCycle,
		TotalReviewers:     s.Overrides.TotalReviewers,
		TokenHoldings:      s.Overrides.TokenHoldings,
		StartingReputation: s.Overrides.StartingReputation,
		AvgReviewTime:      s.Overrides.AvgReviewTime,
		TotalHoldings:      s.Overrides.TotalHoldings,
	}
	if s.Weights != nil {
		ws := simapi.WeightSystem{
			Name:        s.Weights.Name,
			Description: s.Weights.Description,
			Normalize:   s.NormalizeWeights,
		}
		for _, w := range s.Weights.Weights {
			ws.Weights = append(ws.Weights, simapi.Weight{Factor: string(w.Factor), Value: w.Value})
		}
		req.Weights = &ws
	}
	if s.Luck != nil {
		req.Luck = &simapi.Luck{Min: s.Luck.Min, Max: s.Luck.Max}
	}
	return req
}

// resultFromResponse rebuilds an engine result so remote and local runs
// render the same way.
func resultFromResponse(resp *simapi.SimulateResponse) *simulator.Result {
	res := &simulator.Result{
		Status:         simulator.Status(resp.Status),
		InitialBalance: resp.InitialBalance,
		Records:        make([]simulator.CycleRecord, len(resp.Records)),
		WeightSystem:   resp.WeightSystem,
		GrowthLaw:      resp.GrowthLaw,
		RewardModel:    resp.RewardModel,
	}
	for i, r := range resp.Records {
		res.Records[i] = simulator.CycleRecord(r)
	}
	if resp.Halt != nil {
		res.Halt = &guard.Violation{
			Reason: guard.Reason(resp.Halt.Reason),
			Cycle:  resp.Halt.Cycle,
			Detail: resp.Halt.Detail,
		}
	}
	return res
}

func renderResult(w io.Writer, res *simulator.Result, plot bool) error {
	fmt.Fprintf(w, "Weight system: %s | Growth law: %s | Reward model: %s\n\n",
		res.WeightSystem, res.GrowthLaw, res.RewardModel)

	if err := report.WriteTable(w, res.Records); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if err := report.WriteSummary(w, report.Summarize(res)); err != nil {
		return err
	}
	if !plot || len(res.Records) == 0 {
		return nil
	}

	series := []struct {
		title string
		field func(simulator.CycleRecord) float64
	}{
		{"Balance", func(r simulator.CycleRecord) float64 { return r.Balance }},
		{"Reward per cycle", func(r simulator.CycleRecord) float64 { return r.Reward }},
		{"Reputation", func(r simulator.CycleRecord) float64 { return r.Reputation }},
	}
	for _, s := range series {
		if err := report.PlotSeries(w, s.title, report.Series(res.Records, s.field)); err != nil {
			return err
		}
	}
	return nil
}

func runComparison(ctx context.Context, w io.Writer, exec executor, base *config.Scenario, jsonOut bool) error {
	systems := scoring.WeightSystems()
	results := make([]*simulator.Result, 0, len(systems))
	for _, ws := range systems {
		s := *base
		s.WeightSystem = ws.Name
		s.Weights = nil

		res, err := exec(ctx, &s)
		if err != nil {
			return fmt.Errorf("running %s: %w", ws.Name, err)
		}
		results = append(results, res)
	}

	if jsonOut {
		out := make([]simapi.SimulateResponse, len(results))
		for i, res := range results {
			out[i] = api.FromResult(res)
		}
		return writeJSON(w, out)
	}
	return report.WriteComparison(w, results)
}
