package decode

// Word is a single 32-bit machine instruction.
type Word uint32

// Field describes a bit field inside an instruction word.
type Field struct {
	Width uint32
	LSB   uint32
}

// Instruction layout. The opcode lives in the top four bits; the three
// register operands occupy the low nine bits. LoadValue uses its own
// layout with the destination register at bit 25 and a 25-bit literal.
var (
	FieldOp      = Field{Width: 4, LSB: 28}
	FieldA       = Field{Width: 3, LSB: 6}
	FieldB       = Field{Width: 3, LSB: 3}
	FieldC       = Field{Width: 3, LSB: 0}
	FieldLoadReg = Field{Width: 3, LSB: 25}
	FieldLoadVal = Field{Width: 25, LSB: 0}
)

func mask(bits uint32) uint32 {
	return (1 << bits) - 1
}

// Get extracts the value of f from w.
func (w Word) Get(f Field) uint32 {
	return (uint32(w) >> f.LSB) & mask(f.Width)
}

// Op returns the opcode encoded in w. The result may be out of the
// valid range; callers must check with Opcode.Valid.
func (w Word) Op() Opcode {
	return Opcode(w.Get(FieldOp))
}

// Registers returns the A, B and C operands of a standard-layout word.
func (w Word) Registers() (a, b, c uint32) {
	return w.Get(FieldA), w.Get(FieldB), w.Get(FieldC)
}

// LoadOperands returns the destination register and literal of a
// LoadValue word.
func (w Word) LoadOperands() (reg, val uint32) {
	return w.Get(FieldLoadReg), w.Get(FieldLoadVal)
}
