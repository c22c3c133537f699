package vm

import "fmt"

// Opcode identifies a stack-machine instruction.
type Opcode uint8

const (
	OpNOP      Opcode = 0x00
	OpSTOP     Opcode = 0x01
	OpLOAD     Opcode = 0x02 // push memory[arg]
	OpSTORE    Opcode = 0x03 // memory[arg] = pop
	OpPUSH     Opcode = 0x04 // push arg
	OpPOP      Opcode = 0x05
	OpDUP      Opcode = 0x06
	OpADD      Opcode = 0x07
	OpSUB      Opcode = 0x08
	OpMULT     Opcode = 0x09
	OpDIV      Opcode = 0x0A
	OpINVERT   Opcode = 0x0B
	OpCOMPARE  Opcode = 0x0C // arg is a Relation discriminant
	OpJUMP     Opcode = 0x0D
	OpJUMP_YES Opcode = 0x0E
	OpJUMP_NO  Opcode = 0x0F
	OpINPUT    Opcode = 0x10
	OpPRINT    Opcode = 0x11
)

// Comparison discriminants carried by COMPARE.
const (
	CmpEQ = 0
	CmpNE = 1
	CmpLT = 2
	CmpGT = 3
	CmpLE = 4
	CmpGE = 5
)

var opNames = [...]string{
	OpNOP:      "NOP",
	OpSTOP:     "STOP",
	OpLOAD:     "LOAD",
	OpSTORE:    "STORE",
	OpPUSH:     "PUSH",
	OpPOP:      "POP",
	OpDUP:      "DUP",
	OpADD:      "ADD",
	OpSUB:      "SUB",
	OpMULT:     "MULT",
	OpDIV:      "DIV",
	OpINVERT:   "INVERT",
	OpCOMPARE:  "COMPARE",
	OpJUMP:     "JUMP",
	OpJUMP_YES: "JUMP_YES",
	OpJUMP_NO:  "JUMP_NO",
	OpINPUT:    "INPUT",
	OpPRINT:    "PRINT",
}

var opsByName = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opNames))
	for op, name := range opNames {
		m[name] = Opcode(op)
	}
	return m
}()

func (op Opcode) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// Lookup returns the opcode for an upper-case mnemonic.
func Lookup(mnemonic string) (Opcode, bool) {
	op, ok := opsByName[mnemonic]
	return op, ok
}

// HasOperand reports whether instructions with this opcode carry an operand.
func (op Opcode) HasOperand() bool {
	switch op {
	case OpLOAD, OpSTORE, OpPUSH, OpCOMPARE, OpJUMP, OpJUMP_YES, OpJUMP_NO:
		return true
	}
	return false
}

// IsJump reports whether the operand is an instruction address.
func (op Opcode) IsJump() bool {
	return op == OpJUMP || op == OpJUMP_YES || op == OpJUMP_NO
}

// Instruction is one opcode plus its optional operand.
type Instruction struct {
	Op  Opcode
	Arg int64
}

func (in Instruction) String() string {
	if in.Op.HasOperand() {
		return fmt.Sprintf("%s\t%d", in.Op, in.Arg)
	}
	return in.Op.String()
}

// Program is a finalized instruction stream. Jump operands are absolute
// indexes into Code.
type Program struct {
	Code []Instruction
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.Code)
}
