// Package vm implements the Universal Machine interpreter: eight
// 32-bit registers, segmented memory and a fourteen-instruction set
// executed by a fetch/decode/dispatch loop.
package vm

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/genc-murat/crystalvm/internal/decode"
	"github.com/genc-murat/crystalvm/internal/profile"
	"github.com/genc-murat/crystalvm/internal/segment"
)

// ctxCheckInterval is how many instructions run between context
// cancellation checks. Checking every instruction costs more than the
// dispatch itself.
const ctxCheckInterval = 1 << 16

// Options configures a machine. The zero value runs with stdin/stdout,
// no profiler, no trace and no step limit.
type Options struct {
	Input     io.Reader
	Output    io.Writer
	Profiler  *profile.Profiler
	StepLimit uint64
	Trace     *zerolog.Logger
}

// Machine is a complete Universal Machine. It is not safe for
// concurrent use; Run owns all state until it returns.
type Machine struct {
	regs  [8]uint32
	mem   *segment.Store
	pc    uint32
	steps uint64

	in  *bufio.Reader
	out *bufio.Writer

	prof      *profile.Profiler
	stepLimit uint64
	trace     *zerolog.Logger
}

// New boots a machine with the given program installed as segment 0.
func New(program []uint32, opts Options) *Machine {
	in := opts.Input
	if in == nil {
		in = os.Stdin
	}
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	return &Machine{
		mem:       segment.New(program),
		in:        bufio.NewReader(in),
		out:       bufio.NewWriter(out),
		prof:      opts.Profiler,
		stepLimit: opts.StepLimit,
		trace:     opts.Trace,
	}
}

// Restore builds a machine from previously captured state, as produced
// by the snapshot package. The store is adopted, not copied.
func Restore(mem *segment.Store, regs [8]uint32, pc uint32, steps uint64, opts Options) *Machine {
	m := New(nil, opts)
	m.mem = mem
	m.regs = regs
	m.pc = pc
	m.steps = steps
	return m
}

// Registers returns the current register file.
func (m *Machine) Registers() [8]uint32 {
	return m.regs
}

// PC returns the current program counter.
func (m *Machine) PC() uint32 {
	return m.pc
}

// Steps returns the number of instructions executed so far.
func (m *Machine) Steps() uint64 {
	return m.steps
}

// Memory exposes the segment store for snapshots and stats.
func (m *Machine) Memory() *segment.Store {
	return m.mem
}

// Run executes until HALT (nil), a machine fault, step-limit
// exhaustion or context cancellation. Pending console output is
// flushed on every return path.
func (m *Machine) Run(ctx context.Context) error {
	defer m.out.Flush()

	for {
		if m.steps%ctxCheckInterval == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
		if m.stepLimit > 0 && m.steps >= m.stepLimit {
			return ErrStepLimit
		}

		halted, err := m.Step()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
}

// Step executes a single instruction. It reports true once the machine
// has halted.
func (m *Machine) Step() (bool, error) {
	code := m.mem.Zero()
	if m.pc >= uint32(len(code)) {
		return false, m.fault(m.pc, 0, ErrCounterOutOfRange)
	}
	addr := m.pc
	w := decode.Word(code[addr])
	m.pc++
	m.steps++

	if m.trace != nil {
		m.trace.Debug().
			Uint32("addr", addr).
			Str("inst", decode.Disassemble(w)).
			Uints32("regs", m.regs[:]).
			Msg("exec")
	}

	op := w.Op()
	if !op.Valid() {
		return false, m.fault(addr, w, ErrInvalidOpcode)
	}

	if m.prof != nil {
		if m.prof.Timing() {
			start := time.Now()
			halted, err := m.exec(op, addr, w)
			m.prof.RecordTimed(op, time.Since(start))
			return halted, err
		}
		m.prof.Record(op)
	}
	return m.exec(op, addr, w)
}

func (m *Machine) exec(op decode.Opcode, addr uint32, w decode.Word) (bool, error) {
	a, b, c := w.Registers()

	switch op {
	case decode.ConditionalMove:
		if m.regs[c] != 0 {
			m.regs[a] = m.regs[b]
		}

	case decode.SegmentLoad:
		v, err := m.mem.Read(m.regs[b], m.regs[c])
		if err != nil {
			return false, m.fault(addr, w, err)
		}
		m.regs[a] = v

	case decode.SegmentStore:
		if err := m.mem.Write(m.regs[a], m.regs[b], m.regs[c]); err != nil {
			return false, m.fault(addr, w, err)
		}

	case decode.Add:
		m.regs[a] = m.regs[b] + m.regs[c]

	case decode.Multiply:
		m.regs[a] = m.regs[b] * m.regs[c]

	case decode.Divide:
		if m.regs[c] == 0 {
			return false, m.fault(addr, w, ErrDivideByZero)
		}
		m.regs[a] = m.regs[b] / m.regs[c]

	case decode.NotAnd:
		m.regs[a] = ^(m.regs[b] & m.regs[c])

	case decode.Halt:
		return true, nil

	case decode.MapSegment:
		m.regs[b] = m.mem.Map(m.regs[c])

	case decode.UnmapSegment:
		if err := m.mem.Unmap(m.regs[c]); err != nil {
			return false, m.fault(addr, w, err)
		}

	case decode.Output:
		v := m.regs[c]
		if v > 255 {
			return false, m.fault(addr, w, ErrOutputRange)
		}
		if err := m.out.WriteByte(byte(v)); err != nil {
			return false, m.fault(addr, w, err)
		}

	case decode.Input:
		// Interactive programs prompt before reading; make sure the
		// prompt is visible.
		if err := m.out.Flush(); err != nil {
			return false, m.fault(addr, w, err)
		}
		ch, err := m.in.ReadByte()
		switch err {
		case nil:
			m.regs[c] = uint32(ch)
		case io.EOF:
			m.regs[c] = ^uint32(0)
		default:
			return false, m.fault(addr, w, err)
		}

	case decode.LoadProgram:
		if id := m.regs[b]; id != 0 {
			img, err := m.mem.Dup(id)
			if err != nil {
				return false, m.fault(addr, w, err)
			}
			m.mem.SetZero(img)
		}
		m.pc = m.regs[c]

	case decode.LoadValue:
		reg, val := w.LoadOperands()
		m.regs[reg] = val
	}

	return false, nil
}
