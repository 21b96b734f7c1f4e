package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/tensorplex-labs/reviewsim/internal/simulator"
)

// WriteComparison prints the summaries of several runs side by side, plus how
// closely each reward trajectory tracks the first one.
func WriteComparison(w io.Writer, results []*simulator.Result) error {
	if len(results) == 0 {
		return nil
	}
	reward := func(r simulator.CycleRecord) float64 { return r.Reward }
	baseline := Series(results[0].Records, reward)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "System\tStatus\tCycles\tFinal balance\tFinal reputation\tTotal reward\tROI %\tSimilarity")
	for _, res := range results {
		s := Summarize(res)
		sim := CosineSimilarity(baseline, Series(res.Records, reward))
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\t%.4f\t%.2f\t%.2f\t%.4f\n",
			res.WeightSystem, s.Status, s.Cycles, s.FinalBalance, s.FinalReputation, s.TotalReward, s.ROI, sim)
	}
	return tw.Flush()
}
