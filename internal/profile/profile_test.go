package profile

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/genc-murat/crystalvm/internal/decode"
	"github.com/genc-murat/crystalvm/internal/segment"
)

func TestProfilerCounts(t *testing.T) {
	p := New(false)
	for i := 0; i < 5; i++ {
		p.Record(decode.Add)
	}
	p.Record(decode.Halt)

	assert.Equal(t, int64(6), p.Total())

	rows := p.Stats()
	assert.Len(t, rows, 2, "opcodes never executed are omitted")
	assert.Equal(t, "ADD", rows[0].Name, "rows sort busiest first")
	assert.Equal(t, int64(5), rows[0].Calls)
	assert.InDelta(t, 83.33, rows[0].Percent, 0.01)
}

func TestProfilerTiming(t *testing.T) {
	p := New(true)
	assert.True(t, p.Timing())

	p.RecordTimed(decode.Divide, 3*time.Millisecond)
	p.RecordTimed(decode.Divide, 2*time.Millisecond)

	rows := p.Stats()
	assert.Equal(t, int64(5*time.Millisecond), rows[0].TimeNs)
}

func TestEmptyProfile(t *testing.T) {
	p := New(false)
	assert.Nil(t, p.Stats())
	assert.Equal(t, int64(0), p.Total())
}

func TestReport(t *testing.T) {
	p := New(false)
	p.Record(decode.MapSegment)
	p.Record(decode.MapSegment)
	p.Record(decode.UnmapSegment)

	seg := segment.Stats{Maps: 3, Unmaps: 1, PoolHits: 1, PoolMisses: 2, LiveSegments: 2, PeakSegments: 3}

	var buf bytes.Buffer
	assert.NoError(t, p.Report(&buf, seg, 2*time.Second))

	out := buf.String()
	assert.Contains(t, out, "instructions: 3")
	assert.Contains(t, out, "MAP")
	assert.Contains(t, out, "pool_hits=1")
	assert.Contains(t, out, "peak=3")
}
