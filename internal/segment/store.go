// Package segment implements the machine's segmented memory: an
// id-indexed collection of independently sized word arrays with a LIFO
// free list for identifier reuse. This allocator is the hot path of the
// whole emulator, so the Store is deliberately unsynchronized; the
// machine goroutine owns it exclusively.
package segment

import (
	"errors"
	"fmt"
)

var (
	ErrUnmapped    = errors.New("segment is not mapped")
	ErrOutOfRange  = errors.New("segment id out of range")
	ErrOutOfBounds = errors.New("offset out of segment bounds")
	ErrZeroSegment = errors.New("segment 0 cannot be unmapped")

	// ErrFreeListCorrupt is returned by Restore when a free list does
	// not match its segment table: an id that is out of range, still
	// live, or repeated.
	ErrFreeListCorrupt = errors.New("free list does not match segment table")
)

// Stats counts allocator activity since the store was created.
type Stats struct {
	Maps         int64 `json:"maps"`
	Unmaps       int64 `json:"unmaps"`
	IDReuses     int64 `json:"id_reuses"`
	PoolHits     int64 `json:"pool_hits"`
	PoolMisses   int64 `json:"pool_misses"`
	LiveSegments int   `json:"live_segments"`
	PeakSegments int   `json:"peak_segments"`
	LiveWords    int64 `json:"live_words"`
	PeakWords    int64 `json:"peak_words"`
}

// Store holds every mapped segment. A nil entry in segs is an unmapped
// id waiting on the free list.
type Store struct {
	segs  [][]uint32
	free  []uint32
	pool  wordPool
	stats Stats
}

// New creates a store with segment 0 holding the given program.
func New(program []uint32) *Store {
	s := &Store{segs: make([][]uint32, 1, 64)}
	s.segs[0] = program
	s.stats.Maps = 1
	s.stats.LiveSegments = 1
	s.stats.PeakSegments = 1
	s.stats.LiveWords = int64(len(program))
	s.stats.PeakWords = int64(len(program))
	return s
}

// Map allocates a zero-filled segment of size words and returns its id.
// Freed ids are reused most-recent-first before the id space grows.
func (s *Store) Map(size uint32) uint32 {
	words := s.pool.get(int(size), &s.stats)

	var id uint32
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
		s.segs[id] = words
		s.stats.IDReuses++
	} else {
		s.segs = append(s.segs, words)
		id = uint32(len(s.segs) - 1)
	}

	s.stats.Maps++
	s.stats.LiveSegments++
	if s.stats.LiveSegments > s.stats.PeakSegments {
		s.stats.PeakSegments = s.stats.LiveSegments
	}
	s.stats.LiveWords += int64(size)
	if s.stats.LiveWords > s.stats.PeakWords {
		s.stats.PeakWords = s.stats.LiveWords
	}
	return id
}

// Unmap releases the segment and pushes its id onto the free list.
func (s *Store) Unmap(id uint32) error {
	if id == 0 {
		return ErrZeroSegment
	}
	if err := s.check(id); err != nil {
		return err
	}

	words := s.segs[id]
	s.segs[id] = nil
	s.free = append(s.free, id)
	s.pool.put(words)

	s.stats.Unmaps++
	s.stats.LiveSegments--
	s.stats.LiveWords -= int64(len(words))
	return nil
}

// Read returns the word at offset off of segment id.
func (s *Store) Read(id, off uint32) (uint32, error) {
	if err := s.check(id); err != nil {
		return 0, err
	}
	seg := s.segs[id]
	if off >= uint32(len(seg)) {
		return 0, fmt.Errorf("read [%d][%d] (len %d): %w", id, off, len(seg), ErrOutOfBounds)
	}
	return seg[off], nil
}

// Write stores val at offset off of segment id.
func (s *Store) Write(id, off, val uint32) error {
	if err := s.check(id); err != nil {
		return err
	}
	seg := s.segs[id]
	if off >= uint32(len(seg)) {
		return fmt.Errorf("write [%d][%d] (len %d): %w", id, off, len(seg), ErrOutOfBounds)
	}
	seg[off] = val
	return nil
}

// Zero returns the live program segment. Callers must treat the slice
// as invalidated by the next SetZero.
func (s *Store) Zero() []uint32 {
	return s.segs[0]
}

// SetZero replaces the program segment, releasing the previous one.
func (s *Store) SetZero(words []uint32) {
	old := s.segs[0]
	s.segs[0] = words
	s.stats.LiveWords += int64(len(words)) - int64(len(old))
	if s.stats.LiveWords > s.stats.PeakWords {
		s.stats.PeakWords = s.stats.LiveWords
	}
	s.pool.put(old)
}

// Dup returns a copy of segment id, for loading a new program image.
func (s *Store) Dup(id uint32) ([]uint32, error) {
	if err := s.check(id); err != nil {
		return nil, err
	}
	src := s.segs[id]
	dst := s.pool.get(len(src), &s.stats)
	copy(dst, src)
	return dst, nil
}

// Mapped reports whether id refers to a live segment.
func (s *Store) Mapped(id uint32) bool {
	return s.check(id) == nil
}

// Len returns the word count of segment id, or 0 when unmapped.
func (s *Store) Len(id uint32) uint32 {
	if s.check(id) != nil {
		return 0
	}
	return uint32(len(s.segs[id]))
}

// Stats returns a snapshot of the allocator counters.
func (s *Store) Stats() Stats {
	return s.stats
}

func (s *Store) check(id uint32) error {
	if id >= uint32(len(s.segs)) {
		return fmt.Errorf("segment %d: %w", id, ErrOutOfRange)
	}
	if s.segs[id] == nil {
		return fmt.Errorf("segment %d: %w", id, ErrUnmapped)
	}
	return nil
}
