// Package report renders benchmark results for people and for machines.
package report

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"cimapbench/bench"

	"github.com/sugawarayuuta/sonnet"
)

// WriteText renders results as an aligned table with the columns
// Benchmark, Mode, Cnt, Score, Error, Units. Sample-time results are
// followed by one row per percentile.
func WriteText(w io.Writer, results []bench.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Benchmark\tMode\tCnt\tScore\t\tError\tUnits\t")
	for _, r := range results {
		if r.Failed {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t\t%s\t%s\t\n", r.Benchmark, r.Mode, r.Stats.N, "FAILED", "", r.Unit)
			continue
		}
		errCol, pm := "", ""
		if r.Stats.N > 1 {
			errCol, pm = formatScore(r.Stats.Error), "±"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t\n",
			r.Benchmark, r.Mode, r.Stats.N, formatScore(r.Stats.Mean), pm, errCol, r.Unit)

		for _, p := range r.Percentiles {
			fmt.Fprintf(tw, "%s:p%s\t%s\t%s\t%s\t\t\t%s\t\n",
				r.Benchmark, formatPercentile(p.P), r.Mode, "", formatScore(p.Value), r.Unit)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, r := range results {
		if r.Failed {
			if _, err := fmt.Fprintf(w, "\n%s %s failed: %s\n", r.Benchmark, r.Mode, r.Error); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteJSON writes results as one JSON array.
func WriteJSON(w io.Writer, results []bench.Result) error {
	if results == nil {
		results = []bench.Result{}
	}
	data, err := sonnet.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// formatScore keeps three decimals, or more significant digits for
// scores below one.
func formatScore(v float64) string {
	if v != 0 && v < 1 && v > -1 {
		return strconv.FormatFloat(v, 'g', 4, 64)
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func formatPercentile(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
