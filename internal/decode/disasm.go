package decode

import (
	"bufio"
	"fmt"
	"io"
)

// Disassemble renders a single instruction word as assembly-like text.
// Words with an invalid opcode are rendered as raw data so that a
// listing of a program containing embedded data still round-trips.
func Disassemble(w Word) string {
	op := w.Op()
	switch op {
	case ConditionalMove, SegmentLoad, SegmentStore, Add, Multiply, Divide, NotAnd:
		a, b, c := w.Registers()
		return fmt.Sprintf("%-6s r%d r%d r%d", op, a, b, c)
	case Halt:
		return op.String()
	case MapSegment, LoadProgram:
		_, b, c := w.Registers()
		return fmt.Sprintf("%-6s r%d r%d", op, b, c)
	case UnmapSegment, Output, Input:
		_, _, c := w.Registers()
		return fmt.Sprintf("%-6s r%d", op, c)
	case LoadValue:
		reg, val := w.LoadOperands()
		return fmt.Sprintf("%-6s r%d %d", op, reg, val)
	default:
		return fmt.Sprintf("DATA   0x%08x", uint32(w))
	}
}

// Program writes a full listing of words to out, one instruction per
// line with its segment offset and raw encoding.
func Program(words []uint32, out io.Writer) error {
	bw := bufio.NewWriter(out)
	for i, raw := range words {
		if _, err := fmt.Fprintf(bw, "%08d  %08x  %s\n", i, raw, Disassemble(Word(raw))); err != nil {
			return err
		}
	}
	return bw.Flush()
}
