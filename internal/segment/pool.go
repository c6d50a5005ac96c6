package segment

import "math/bits"

// Word-slice recycling keeps the backing arrays of unmapped segments
// around in power-of-two size classes. Programs that map and unmap at a
// steady rate then stop paying for allocation at all, which is exactly
// the pattern that dominated profiles of the naive version.

const (
	minClassShift = 3  // smallest recycled capacity: 8 words
	maxClassShift = 20 // largest recycled capacity: 1Mi words
	classCount    = maxClassShift - minClassShift + 1

	// Per-class retention cap. Beyond this the slices go back to the
	// garbage collector instead of pinning memory forever.
	maxPerClass = 64
)

type wordPool struct {
	classes [classCount][][]uint32
}

func classFor(capacity int) int {
	if capacity <= 1<<minClassShift {
		return 0
	}
	shift := bits.Len(uint(capacity - 1)) // ceil(log2)
	if shift > maxClassShift {
		return -1
	}
	return shift - minClassShift
}

// get returns a zeroed slice of length size, reusing a retained backing
// array when one of sufficient capacity exists.
func (p *wordPool) get(size int, stats *Stats) []uint32 {
	if size == 0 {
		stats.PoolHits++
		return emptySegment
	}

	class := classFor(size)
	if class >= 0 {
		if slots := p.classes[class]; len(slots) > 0 {
			words := slots[len(slots)-1]
			p.classes[class] = slots[:len(slots)-1]

			words = words[:size]
			clear(words)
			stats.PoolHits++
			return words
		}
	}

	stats.PoolMisses++
	if class < 0 {
		return make([]uint32, size)
	}
	// Round the allocation up to the class capacity so the slice is
	// reusable for any request in the same class later.
	return make([]uint32, size, 1<<(class+minClassShift))
}

// put retains the backing array of a released segment.
func (p *wordPool) put(words []uint32) {
	c := cap(words)
	if c == 0 {
		return
	}
	class := classFor(c)
	if class < 0 || c != 1<<(class+minClassShift) {
		// Odd-sized capacity (program image loaded from disk or an
		// oversized segment); not worth tracking.
		return
	}
	if len(p.classes[class]) >= maxPerClass {
		return
	}
	p.classes[class] = append(p.classes[class], words[:0])
}

// emptySegment backs every zero-length mapping. Non-nil so a mapped
// empty segment is distinguishable from an unmapped id.
var emptySegment = make([]uint32, 0)
