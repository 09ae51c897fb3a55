package perfdata

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
)

// Summary aggregates every record of one operation.
type Summary struct {
	Operation string
	TimeSec   float64
	MemoryMB  float64
	Counts    int64
}

// Summarize groups records by operation: times and counts are summed, memory
// keeps the peak. The result is ordered by total time, largest first.
func Summarize(records []Record) []Summary {
	index := make(map[string]int)
	var out []Summary

	for _, rec := range records {
		i, ok := index[rec.Operation]
		if !ok {
			i = len(out)
			index[rec.Operation] = i
			out = append(out, Summary{Operation: rec.Operation, MemoryMB: rec.MemoryMB})
		}

		out[i].TimeSec += rec.TimeSec
		out[i].Counts += rec.Counts
		if rec.MemoryMB > out[i].MemoryMB {
			out[i].MemoryMB = rec.MemoryMB
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].TimeSec > out[b].TimeSec
	})

	return out
}

// WriteReport renders summaries as an aligned text table.
func WriteReport(w io.Writer, summaries []Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "operation\ttime_sec\tmemory_mb\tcounts")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%d\n", s.Operation, s.TimeSec, s.MemoryMB, s.Counts)
	}

	return tw.Flush()
}
