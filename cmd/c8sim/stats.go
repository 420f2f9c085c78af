package main

import (
	"fmt"
	"io"

	"github.com/sarchlab/c8sim/timing/core"
)

// printStats writes the run summary.
func printStats(w io.Writer, stats core.Stats) {
	_, _ = fmt.Fprintf(w, "\nCycles:          %d\n", stats.Cycles)
	_, _ = fmt.Fprintf(w, "Instructions:    %d\n", stats.Instructions)
	_, _ = fmt.Fprintf(w, "CPI:             %.3f\n", stats.CPI())
	_, _ = fmt.Fprintf(w, "Timer ticks:     %d\n", stats.TimerTicks)
	_, _ = fmt.Fprintf(w, "Key wait polls:  %d\n", stats.WaitCycles)
	if stats.SkippedOpcodes > 0 {
		_, _ = fmt.Fprintf(w, "Skipped opcodes: %d\n", stats.SkippedOpcodes)
	}
	if stats.CacheHits > 0 || stats.CacheMisses > 0 {
		hitRate := float64(stats.CacheHits) / float64(stats.CacheHits+stats.CacheMisses) * 100
		_, _ = fmt.Fprintf(w, "Decode cache:    %d hits, %d misses (%.1f%%)\n",
			stats.CacheHits, stats.CacheMisses, hitRate)
	}
}
