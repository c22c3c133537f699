package compiler

import (
	"fmt"
	"io"
	"sort"

	"milan/pkg/asm"
	"milan/pkg/vm"
)

// CodeSink is what the parser emits into. Reserve hands out a placeholder
// slot whose instruction is filled in later with EmitAt; CurrentAddress is
// the address the next emitted instruction will occupy.
type CodeSink interface {
	Emit(op vm.Opcode)
	EmitArg(op vm.Opcode, arg int64)
	Reserve() int
	EmitAt(slot int, op vm.Opcode, arg int64)
	CurrentAddress() int
	Flush() error
}

// CodeGen is the in-memory CodeSink: an indexable instruction buffer plus
// the set of reserved slots still waiting for their patch.
type CodeGen struct {
	code    []vm.Instruction
	pending map[int]bool
	out     io.Writer
	flushed bool
}

// NewCodeGen returns an empty buffer. Flush writes the listing to out when
// out is non-nil.
func NewCodeGen(out io.Writer) *CodeGen {
	return &CodeGen{
		pending: make(map[int]bool),
		out:     out,
	}
}

func (cg *CodeGen) Emit(op vm.Opcode) {
	cg.code = append(cg.code, vm.Instruction{Op: op})
}

func (cg *CodeGen) EmitArg(op vm.Opcode, arg int64) {
	cg.code = append(cg.code, vm.Instruction{Op: op, Arg: arg})
}

// Reserve appends a NOP placeholder and returns its address.
func (cg *CodeGen) Reserve() int {
	slot := len(cg.code)
	cg.code = append(cg.code, vm.Instruction{Op: vm.OpNOP})
	cg.pending[slot] = true
	return slot
}

// EmitAt patches a reserved slot. Patching anything else is a translator
// bug and panics.
func (cg *CodeGen) EmitAt(slot int, op vm.Opcode, arg int64) {
	if !cg.pending[slot] {
		panic(fmt.Sprintf("codegen: EmitAt(%d) on a slot that is not reserved or already patched", slot))
	}
	delete(cg.pending, slot)
	cg.code[slot] = vm.Instruction{Op: op, Arg: arg}
}

func (cg *CodeGen) CurrentAddress() int {
	return len(cg.code)
}

// Pending returns the reserved slots not yet patched, in address order.
func (cg *CodeGen) Pending() []int {
	slots := make([]int, 0, len(cg.pending))
	for slot := range cg.pending {
		slots = append(slots, slot)
	}
	sort.Ints(slots)
	return slots
}

func (cg *CodeGen) validate() error {
	if slots := cg.Pending(); len(slots) > 0 {
		return fmt.Errorf("%w: %v", ErrUnpatchedSlot, slots)
	}
	for addr, instr := range cg.code {
		if instr.Op.IsJump() && (instr.Arg < 0 || instr.Arg >= int64(len(cg.code))) {
			return fmt.Errorf("%w: %s at %d targets %d", ErrJumpOutOfRange, instr.Op, addr, instr.Arg)
		}
	}
	return nil
}

// Program returns the finished stream once every slot is patched and every
// jump lands inside it.
func (cg *CodeGen) Program() (*vm.Program, error) {
	if err := cg.validate(); err != nil {
		return nil, err
	}
	code := make([]vm.Instruction, len(cg.code))
	copy(code, cg.code)
	return &vm.Program{Code: code}, nil
}

// Flush finalises the stream and writes its listing.
func (cg *CodeGen) Flush() error {
	if err := cg.validate(); err != nil {
		return err
	}
	cg.flushed = true
	if cg.out == nil {
		return nil
	}
	return asm.Write(cg.out, cg.code)
}

// Flushed reports whether Flush succeeded.
func (cg *CodeGen) Flushed() bool {
	return cg.flushed
}
