package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tensorplex-labs/reviewsim/internal/ledger"
	"github.com/tensorplex-labs/reviewsim/internal/simulator"
)

// Summary condenses a run into the figures shown under the table.
type Summary struct {
	Status          simulator.Status `json:"status"`
	HaltReason      string           `json:"halt_reason,omitempty"`
	HaltCycle       int              `json:"halt_cycle,omitempty"`
	Cycles          int              `json:"cycles"`
	Days            int              `json:"days"`
	FinalBalance    float64          `json:"final_balance"`
	FinalReputation float64          `json:"final_reputation"`
	TotalReward     float64          `json:"total_reward"`
	MeanReward      float64          `json:"mean_reward"`
	RewardStdDev    float64          `json:"reward_std_dev"`
	ROI             float64          `json:"roi"`
}

func Summarize(res *simulator.Result) Summary {
	s := Summary{
		Status:       res.Status,
		Cycles:       len(res.Records),
		FinalBalance: res.InitialBalance,
	}
	if res.Halt != nil {
		s.HaltReason = string(res.Halt.Reason)
		s.HaltCycle = res.Halt.Cycle
	}

	last, ok := res.Final()
	if !ok {
		return s
	}

	rewards := Series(res.Records, func(r simulator.CycleRecord) float64 { return r.Reward })
	s.Days = last.Days
	s.FinalBalance = last.Balance
	s.FinalReputation = last.Reputation
	s.TotalReward = floats.Sum(rewards)
	s.MeanReward = stat.Mean(rewards, nil)
	if len(rewards) > 1 {
		s.RewardStdDev = stat.StdDev(rewards, nil)
	}
	s.ROI = ledger.ROI(last.Balance, res.InitialBalance)
	return s
}

// Series extracts one column of the records.
func Series(records []simulator.CycleRecord, field func(simulator.CycleRecord) float64) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = field(r)
	}
	return out
}

func WriteSummary(w io.Writer, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Status:\t%s\n", s.Status)
	if s.HaltReason != "" {
		fmt.Fprintf(tw, "Halted:\t%s at cycle %d\n", s.HaltReason, s.HaltCycle)
	}
	fmt.Fprintf(tw, "Cycles:\t%d (%d days)\n", s.Cycles, s.Days)
	fmt.Fprintf(tw, "Final balance:\t%.2f\n", s.FinalBalance)
	fmt.Fprintf(tw, "Final reputation:\t%.4f\n", s.FinalReputation)
	fmt.Fprintf(tw, "Total reward:\t%.2f\n", s.TotalReward)
	fmt.Fprintf(tw, "Mean reward:\t%.2f (sd %.2f)\n", s.MeanReward, s.RewardStdDev)
	fmt.Fprintf(tw, "ROI:\t%.2f%%\n", s.ROI)
	return tw.Flush()
}
