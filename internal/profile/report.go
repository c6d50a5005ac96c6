package profile

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/genc-murat/crystalvm/internal/segment"
)

// Report renders a human-readable profile to w: the opcode table plus
// the allocator counters captured from the machine's segment store.
func (p *Profiler) Report(w io.Writer, seg segment.Stats, elapsed time.Duration) error {
	total := p.Total()
	fmt.Fprintf(w, "instructions: %d  elapsed: %s", total, elapsed.Round(time.Microsecond))
	if secs := elapsed.Seconds(); secs > 0 {
		fmt.Fprintf(w, "  (%.1f Minst/s)", float64(total)/secs/1e6)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	if p.timing {
		fmt.Fprintln(tw, "opcode\tcalls\t%\ttime\t")
		for _, row := range p.Stats() {
			fmt.Fprintf(tw, "%s\t%d\t%.2f\t%s\t\n",
				row.Name, row.Calls, row.Percent, time.Duration(row.TimeNs).Round(time.Microsecond))
		}
	} else {
		fmt.Fprintln(tw, "opcode\tcalls\t%\t")
		for _, row := range p.Stats() {
			fmt.Fprintf(tw, "%s\t%d\t%.2f\t\n", row.Name, row.Calls, row.Percent)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "allocator: maps=%d unmaps=%d id_reuses=%d pool_hits=%d pool_misses=%d\n",
		seg.Maps, seg.Unmaps, seg.IDReuses, seg.PoolHits, seg.PoolMisses)
	fmt.Fprintf(w, "segments: live=%d peak=%d  words: live=%d peak=%d\n",
		seg.LiveSegments, seg.PeakSegments, seg.LiveWords, seg.PeakWords)
	return nil
}

// Snapshot returns the profile in a form suitable for JSON encoding.
func (p *Profiler) Snapshot() map[string]any {
	return map[string]any{
		"total":      p.Total(),
		"elapsed_ns": p.Elapsed().Nanoseconds(),
		"opcodes":    p.Stats(),
	}
}
