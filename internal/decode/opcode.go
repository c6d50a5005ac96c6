package decode

import "fmt"

// Opcode identifies one of the fourteen machine instructions.
type Opcode uint32

const (
	ConditionalMove Opcode = iota
	SegmentLoad
	SegmentStore
	Add
	Multiply
	Divide
	NotAnd
	Halt
	MapSegment
	UnmapSegment
	Output
	Input
	LoadProgram
	LoadValue

	opcodeCount
)

// OpcodeCount is the number of valid opcodes.
const OpcodeCount = int(opcodeCount)

// Valid reports whether op names a real instruction.
func (op Opcode) Valid() bool {
	return op < opcodeCount
}

var mnemonics = [opcodeCount]string{
	ConditionalMove: "CMOV",
	SegmentLoad:     "SLOAD",
	SegmentStore:    "SSTORE",
	Add:             "ADD",
	Multiply:        "MUL",
	Divide:          "DIV",
	NotAnd:          "NAND",
	Halt:            "HALT",
	MapSegment:      "MAP",
	UnmapSegment:    "UNMAP",
	Output:          "OUT",
	Input:           "IN",
	LoadProgram:     "LOADP",
	LoadValue:       "LOADV",
}

func (op Opcode) String() string {
	if !op.Valid() {
		return fmt.Sprintf("INVALID(%d)", uint32(op))
	}
	return mnemonics[op]
}
