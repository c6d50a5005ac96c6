package vm

import (
	"errors"
	"fmt"

	"github.com/genc-murat/crystalvm/internal/decode"
)

var (
	ErrInvalidOpcode     = errors.New("invalid opcode")
	ErrDivideByZero      = errors.New("division by zero")
	ErrOutputRange       = errors.New("output value exceeds one byte")
	ErrCounterOutOfRange = errors.New("program counter outside segment 0")

	// ErrStepLimit is returned by Run when the configured instruction
	// budget runs out. It is not a Fault; the machine state is intact
	// and execution can resume.
	ErrStepLimit = errors.New("step limit exhausted")
)

// Fault is a machine failure: an instruction whose execution is
// undefined. It carries the faulting address and raw word so the CLI
// can report where a program went wrong.
type Fault struct {
	Addr uint32
	Word decode.Word
	Err  error
}

func (f *Fault) Error() string {
	if errors.Is(f.Err, ErrCounterOutOfRange) {
		return fmt.Sprintf("fault at %08d: %v", f.Addr, f.Err)
	}
	return fmt.Sprintf("fault at %08d (%08x %s): %v", f.Addr, uint32(f.Word), decode.Disassemble(f.Word), f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

func (m *Machine) fault(addr uint32, w decode.Word, err error) error {
	return &Fault{Addr: addr, Word: w, Err: err}
}
