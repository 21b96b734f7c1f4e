package report

import (
	"fmt"
	"io"
	"strings"
)

const maxBarWidth = 50

// PlotSeries draws values as horizontal bars in input order, one row per
// cycle, scaled between the series minimum and maximum.
func PlotSeries(w io.Writer, title string, values []float64) error {
	if _, err := fmt.Fprintf(w, "\n%s:\n", title); err != nil {
		return err
	}
	if len(values) == 0 {
		_, err := fmt.Fprintln(w, "(no cycles)")
		return err
	}

	scaled := MinMaxScale(values)
	flat := allEqual(values)

	var b strings.Builder
	b.WriteString("Cycle |        Value | Bar\n")
	b.WriteString("------|--------------|" + strings.Repeat("-", maxBarWidth) + "\n")
	for i, v := range values {
		width := int(scaled[i] * maxBarWidth)
		if flat {
			width = maxBarWidth / 2
		}

		bar := strings.Repeat("█", width)
		if width == 0 {
			bar = "▏"
		}
		fmt.Fprintf(&b, "%5d | %12.4f | %s\n", i+1, v, bar)
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	fmt.Fprintf(&b, "\nScale: Min=%.4f, Max=%.4f\n", lo, hi)

	_, err := io.WriteString(w, b.String())
	return err
}

func allEqual(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
