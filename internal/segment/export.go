package segment

import "fmt"

// Export returns deep copies of the segment table and free list.
// Unmapped ids appear as nil entries so a restore reproduces the id
// space exactly.
func (s *Store) Export() (segs [][]uint32, free []uint32) {
	segs = make([][]uint32, len(s.segs))
	for i, seg := range s.segs {
		if seg == nil {
			continue
		}
		cp := make([]uint32, len(seg))
		copy(cp, seg)
		segs[i] = cp
	}
	free = make([]uint32, len(s.free))
	copy(free, s.free)
	return segs, free
}

// Restore rebuilds a store from exported state. The slices are adopted,
// not copied; callers must not retain them. The free list is checked
// against the segment table before being trusted: snapshot files cross
// a process boundary and a corrupt id would otherwise surface as an
// index panic deep inside Map.
func Restore(segs [][]uint32, free []uint32, stats Stats) (*Store, error) {
	if len(segs) == 0 {
		segs = make([][]uint32, 1)
	}
	seen := make(map[uint32]bool, len(free))
	for _, id := range free {
		switch {
		case id >= uint32(len(segs)):
			return nil, fmt.Errorf("free id %d out of range (%d segments): %w", id, len(segs), ErrFreeListCorrupt)
		case segs[id] != nil:
			return nil, fmt.Errorf("free id %d refers to a live segment: %w", id, ErrFreeListCorrupt)
		case seen[id]:
			return nil, fmt.Errorf("free id %d repeated: %w", id, ErrFreeListCorrupt)
		}
		seen[id] = true
	}
	return &Store{segs: segs, free: free, stats: stats}, nil
}
