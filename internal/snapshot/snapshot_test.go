package snapshot

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genc-murat/crystalvm/internal/segment"
	"github.com/genc-murat/crystalvm/internal/vm"
)

// inst helpers mirror the layout used by the vm tests.
func inst(op, a, b, c uint32) uint32 { return op<<28 | a<<6 | b<<3 | c }
func loadv(reg, val uint32) uint32   { return 13<<28 | reg<<25 | val }

const (
	opOutput = 10
	opHalt   = 7
	opMap    = 8
	opUnmap  = 9
)

func buildMachine(t *testing.T) *vm.Machine {
	t.Helper()
	program := []uint32{
		loadv(1, 5),
		inst(opMap, 0, 2, 1),   // r2 = 5-word segment
		inst(opMap, 0, 3, 1),   // r3 = another
		inst(opUnmap, 0, 0, 3), // free it: exercises the free list
		loadv(0, 'z'),
		inst(opOutput, 0, 0, 0),
		inst(opHalt, 0, 0, 0),
	}
	m := vm.New(program, vm.Options{Output: &bytes.Buffer{}})

	// Run up to, but not including, OUT so the resumed machine still
	// produces the byte.
	for i := 0; i < 5; i++ {
		halted, err := m.Step()
		require.NoError(t, err)
		require.False(t, halted)
	}
	return m
}

func TestCaptureRestoreRoundTrip(t *testing.T) {
	m := buildMachine(t)
	st := Capture(m)

	data, err := st.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	var out bytes.Buffer
	resumed, err := decoded.Machine(vm.Options{Output: &out})
	require.NoError(t, err)

	require.NoError(t, resumed.Run(context.Background()))
	assert.Equal(t, "z", out.String(), "resumed machine finishes the program")
	assert.Equal(t, m.Registers(), decoded.Registers)
}

func TestRestoreValidation(t *testing.T) {
	t.Run("Missing program segment", func(t *testing.T) {
		st := &State{Version: Version}
		_, err := st.Machine(vm.Options{})
		assert.ErrorIs(t, err, ErrNoProgram)
	})

	t.Run("Unknown version", func(t *testing.T) {
		st := &State{Version: 99, Segments: [][]uint32{{0}}}
		_, err := st.Machine(vm.Options{})
		assert.ErrorIs(t, err, ErrVersionUnknown)
	})

	t.Run("Free list id out of range", func(t *testing.T) {
		// A hand-edited file whose program would MAP into the bogus
		// free id; restore must refuse instead of letting Map index
		// past the segment table.
		data := []byte(`{"version":1,"segments":[[2147483649]],"free_list":[99]}`)
		st, err := Decode(data)
		require.NoError(t, err)

		_, err = st.Machine(vm.Options{})
		assert.ErrorIs(t, err, segment.ErrFreeListCorrupt)
	})

	t.Run("Free list id still live", func(t *testing.T) {
		data := []byte(`{"version":1,"segments":[[0],[7]],"free_list":[1]}`)
		st, err := Decode(data)
		require.NoError(t, err)

		_, err = st.Machine(vm.Options{})
		assert.ErrorIs(t, err, segment.ErrFreeListCorrupt)
	})
}

func TestRestoreAfterHalt(t *testing.T) {
	program := []uint32{
		loadv(0, 'q'),
		inst(opOutput, 0, 0, 0),
		inst(opHalt, 0, 0, 0),
	}
	var out bytes.Buffer
	m := vm.New(program, vm.Options{Output: &out})
	require.NoError(t, m.Run(context.Background()))
	require.Equal(t, "q", out.String())

	st := Capture(m)
	resumed, err := st.Machine(vm.Options{Output: &bytes.Buffer{}})
	require.NoError(t, err)

	// The counter already sits past the final instruction, so running
	// the restored machine faults at the first fetch.
	err = resumed.Run(context.Background())
	assert.ErrorIs(t, err, vm.ErrCounterOutOfRange)
}

func TestSaveOpenFile(t *testing.T) {
	m := buildMachine(t)
	path := filepath.Join(t.TempDir(), "machine.json")

	require.NoError(t, Save(Capture(m), path))

	st, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, m.PC(), st.PC)
	assert.Equal(t, m.Steps(), st.Steps)
}

func TestQuery(t *testing.T) {
	m := buildMachine(t)
	data, err := Capture(m).Encode()
	require.NoError(t, err)

	t.Run("Register by index", func(t *testing.T) {
		res, err := Query(data, "registers.1")
		require.NoError(t, err)
		assert.Equal(t, int64(5), res.Int())
	})

	t.Run("Segment word count", func(t *testing.T) {
		res, err := Query(data, "segments.1.#")
		require.NoError(t, err)
		assert.Equal(t, int64(5), res.Int())
	})

	t.Run("Allocator counters", func(t *testing.T) {
		res, err := Query(data, "alloc_stats.unmaps")
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.Int())
	})

	t.Run("Free list", func(t *testing.T) {
		res, err := Query(data, "free_list.0")
		require.NoError(t, err)
		assert.Equal(t, int64(2), res.Int(), "segment freed by UNMAP")
	})

	t.Run("No match", func(t *testing.T) {
		_, err := Query(data, "no_such_field")
		assert.ErrorIs(t, err, ErrNoMatch)
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		_, err := Query([]byte("{nope"), "pc")
		assert.Error(t, err)
	})
}

func TestQueryFile(t *testing.T) {
	m := buildMachine(t)
	path := filepath.Join(t.TempDir(), "machine.json")
	require.NoError(t, Save(Capture(m), path))

	res, err := QueryFile(path, "pc")
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Int())
}
