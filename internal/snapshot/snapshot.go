// Package snapshot persists a stopped machine as JSON so a run can be
// resumed or examined offline.
package snapshot

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/genc-murat/crystalvm/internal/segment"
	"github.com/genc-murat/crystalvm/internal/vm"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrNoProgram      = errors.New("snapshot has no program segment")
	ErrVersionUnknown = errors.New("unsupported snapshot version")
)

// Version is bumped when the encoding changes incompatibly.
const Version = 1

// State is the complete serialized machine. Unmapped segment ids are
// encoded as nulls so the id space and free list survive the round
// trip bit-exact.
type State struct {
	Version    int           `json:"version"`
	Registers  [8]uint32     `json:"registers"`
	PC         uint32        `json:"pc"`
	Steps      uint64        `json:"steps"`
	Segments   [][]uint32    `json:"segments"`
	FreeList   []uint32      `json:"free_list"`
	AllocStats segment.Stats `json:"alloc_stats"`
}

// Capture copies the machine's state. The machine must be stopped.
func Capture(m *vm.Machine) *State {
	segs, free := m.Memory().Export()
	return &State{
		Version:    Version,
		Registers:  m.Registers(),
		PC:         m.PC(),
		Steps:      m.Steps(),
		Segments:   segs,
		FreeList:   free,
		AllocStats: m.Memory().Stats(),
	}
}

// Machine rebuilds a runnable machine from the state.
func (st *State) Machine(opts vm.Options) (*vm.Machine, error) {
	if st.Version != Version {
		return nil, fmt.Errorf("version %d: %w", st.Version, ErrVersionUnknown)
	}
	if len(st.Segments) == 0 || st.Segments[0] == nil {
		return nil, ErrNoProgram
	}
	mem, err := segment.Restore(st.Segments, st.FreeList, st.AllocStats)
	if err != nil {
		return nil, err
	}
	return vm.Restore(mem, st.Registers, st.PC, st.Steps, opts), nil
}

// Encode renders the state as JSON.
func (st *State) Encode() ([]byte, error) {
	return json.Marshal(st)
}

// Decode parses a serialized state.
func Decode(data []byte) (*State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &st, nil
}

// Open reads and decodes a snapshot file under its advisory lock.
func Open(path string) (*State, error) {
	unlock, err := lock(path)
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}
