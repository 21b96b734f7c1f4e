// Package report renders simulation results for terminals.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/tensorplex-labs/reviewsim/internal/simulator"
)

// WriteTable prints one row per committed cycle.
func WriteTable(w io.Writer, records []simulator.CycleRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Cycle\tDays\tWeight\tShare %\tReward\tBalance\tROI %\tGrowth\tReputation\t")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%d\t%.4f\t%.2f\t%.2f\t%.2f\t%.2f\t%.4f\t%.4f\t\n",
			r.Cycle, r.Days, r.Weight, r.ShareOfPool, r.Reward, r.Balance, r.ROI, r.GrowthRate, r.Reputation)
	}
	return tw.Flush()
}
