// Package profile collects per-opcode execution statistics from a
// running machine. It replaces the external flame-graph workflow that
// originally identified the segment allocator as the dominant cost.
package profile

import (
	"sort"
	"time"

	"github.com/genc-murat/crystalvm/internal/decode"
)

// Profiler accumulates instruction counts and, when timing is enabled,
// cumulative nanoseconds per opcode. It is owned by the machine
// goroutine; counters are plain ints so the hot loop stays cheap.
type Profiler struct {
	counts  [decode.OpcodeCount]int64
	timesNs [decode.OpcodeCount]int64
	started time.Time
	timing  bool
}

// New creates a profiler. When timing is true each instruction is
// individually clocked, which roughly doubles interpreter overhead;
// counts alone are close to free.
func New(timing bool) *Profiler {
	return &Profiler{started: time.Now(), timing: timing}
}

// Timing reports whether per-instruction clocks are enabled.
func (p *Profiler) Timing() bool {
	return p.timing
}

// Record counts one execution of op.
func (p *Profiler) Record(op decode.Opcode) {
	p.counts[op]++
}

// RecordTimed counts one execution of op taking d.
func (p *Profiler) RecordTimed(op decode.Opcode, d time.Duration) {
	p.counts[op]++
	p.timesNs[op] += d.Nanoseconds()
}

// Total returns the number of instructions recorded.
func (p *Profiler) Total() int64 {
	var total int64
	for _, c := range p.counts {
		total += c
	}
	return total
}

// Elapsed returns wall time since the profiler was created.
func (p *Profiler) Elapsed() time.Duration {
	return time.Since(p.started)
}

// OpStat is one row of a profile report.
type OpStat struct {
	Op      decode.Opcode `json:"-"`
	Name    string        `json:"name"`
	Calls   int64         `json:"calls"`
	Percent float64       `json:"percent"`
	TimeNs  int64         `json:"time_ns,omitempty"`
}

// Stats returns per-opcode rows sorted by call count, busiest first.
// Opcodes that never executed are omitted.
func (p *Profiler) Stats() []OpStat {
	total := p.Total()
	if total == 0 {
		return nil
	}

	rows := make([]OpStat, 0, decode.OpcodeCount)
	for op, calls := range p.counts {
		if calls == 0 {
			continue
		}
		rows = append(rows, OpStat{
			Op:      decode.Opcode(op),
			Name:    decode.Opcode(op).String(),
			Calls:   calls,
			Percent: float64(calls) / float64(total) * 100,
			TimeNs:  p.timesNs[op],
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Calls != rows[j].Calls {
			return rows[i].Calls > rows[j].Calls
		}
		return rows[i].Op < rows[j].Op
	})
	return rows
}
