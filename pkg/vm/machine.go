package vm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrStackOverflow  = errors.New("vm: stack overflow")
	ErrStackUnderflow = errors.New("vm: stack underflow")
	ErrDivisionByZero = errors.New("vm: division by zero")
	ErrBadOperand     = errors.New("vm: bad operand")
	ErrBadInput       = errors.New("vm: bad input")
	ErrPCOutOfRange   = errors.New("vm: program counter out of range")
	ErrStepLimit      = errors.New("vm: step limit exceeded")
	ErrUnknownOpcode  = errors.New("vm: unknown opcode")
)

// StackLimit bounds the operand stack.
const StackLimit = 1 << 16

// MemoryLimit bounds the addressable variable storage.
const MemoryLimit = 1 << 20

// Machine executes a Program against an operand stack and a growable,
// zero-initialised memory.
type Machine struct {
	Stack  []int64
	memory []int64

	PC     int
	Steps  int
	halted bool

	prog *Program

	// Input supplies values for INPUT. If nil, os.Stdin is used.
	Input io.Reader
	// Output receives PRINT values. If nil, os.Stdout is used.
	Output io.Writer
	// Prompt, when set, receives "> " before every INPUT.
	Prompt io.Writer

	// MaxSteps aborts Run with ErrStepLimit when positive.
	MaxSteps int

	in *bufio.Reader
}

// NewMachine returns a machine ready to execute prog.
func NewMachine(prog *Program) *Machine {
	m := &Machine{}
	m.Load(prog)
	return m
}

// Load resets all execution state and installs prog.
func (m *Machine) Load(prog *Program) {
	m.prog = prog
	m.Stack = m.Stack[:0]
	m.memory = m.memory[:0]
	m.PC = 0
	m.Steps = 0
	m.halted = false
}

func (m *Machine) outputSink() io.Writer {
	if m.Output != nil {
		return m.Output
	}
	return os.Stdout
}

func (m *Machine) inputSource() *bufio.Reader {
	if m.in == nil {
		var r io.Reader = os.Stdin
		if m.Input != nil {
			r = m.Input
		}
		m.in = bufio.NewReader(r)
	}
	return m.in
}

// Halted reports whether STOP has been executed.
func (m *Machine) Halted() bool {
	return m.halted
}

// Memory returns a copy of the variable storage touched so far.
func (m *Machine) Memory() []int64 {
	out := make([]int64, len(m.memory))
	copy(out, m.memory)
	return out
}

// Read returns memory[addr]; untouched cells read as zero.
func (m *Machine) Read(addr int64) (int64, error) {
	if addr < 0 || addr >= MemoryLimit {
		return 0, fmt.Errorf("%w: address %d", ErrBadOperand, addr)
	}
	if int(addr) >= len(m.memory) {
		return 0, nil
	}
	return m.memory[addr], nil
}

// Write stores val at memory[addr], growing memory as needed.
func (m *Machine) Write(addr int64, val int64) error {
	if addr < 0 || addr >= MemoryLimit {
		return fmt.Errorf("%w: address %d", ErrBadOperand, addr)
	}
	for int(addr) >= len(m.memory) {
		m.memory = append(m.memory, 0)
	}
	m.memory[addr] = val
	return nil
}

func (m *Machine) push(v int64) error {
	if len(m.Stack) >= StackLimit {
		return ErrStackOverflow
	}
	m.Stack = append(m.Stack, v)
	return nil
}

func (m *Machine) pop() (int64, error) {
	n := len(m.Stack)
	if n == 0 {
		return 0, ErrStackUnderflow
	}
	v := m.Stack[n-1]
	m.Stack = m.Stack[:n-1]
	return v, nil
}

func (m *Machine) pop2() (a, b int64, err error) {
	if b, err = m.pop(); err != nil {
		return 0, 0, err
	}
	if a, err = m.pop(); err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func (m *Machine) jump(target int64) error {
	if target < 0 || target >= int64(m.prog.Len()) {
		return fmt.Errorf("%w: jump to %d", ErrPCOutOfRange, target)
	}
	m.PC = int(target)
	return nil
}

func compare(cmp int64, a, b int64) (bool, error) {
	switch cmp {
	case CmpEQ:
		return a == b, nil
	case CmpNE:
		return a != b, nil
	case CmpLT:
		return a < b, nil
	case CmpGT:
		return a > b, nil
	case CmpLE:
		return a <= b, nil
	case CmpGE:
		return a >= b, nil
	}
	return false, fmt.Errorf("%w: compare discriminant %d", ErrBadOperand, cmp)
}

// Step executes a single instruction. Errors carry the failing address.
func (m *Machine) Step() error {
	if m.halted {
		return nil
	}
	if m.prog == nil || m.PC < 0 || m.PC >= m.prog.Len() {
		return fmt.Errorf("%w: pc %d", ErrPCOutOfRange, m.PC)
	}

	pc := m.PC
	instr := m.prog.Code[pc]
	m.PC++
	m.Steps++

	if err := m.exec(instr); err != nil {
		return fmt.Errorf("at %d (%s): %w", pc, instr.Op, err)
	}
	return nil
}

func (m *Machine) exec(instr Instruction) error {
	switch instr.Op {
	case OpNOP:
		// No operation.

	case OpSTOP:
		m.halted = true

	case OpLOAD:
		v, err := m.Read(instr.Arg)
		if err != nil {
			return err
		}
		return m.push(v)

	case OpSTORE:
		v, err := m.pop()
		if err != nil {
			return err
		}
		return m.Write(instr.Arg, v)

	case OpPUSH:
		return m.push(instr.Arg)

	case OpPOP:
		_, err := m.pop()
		return err

	case OpDUP:
		v, err := m.pop()
		if err != nil {
			return err
		}
		if err := m.push(v); err != nil {
			return err
		}
		return m.push(v)

	case OpADD, OpSUB, OpMULT, OpDIV:
		a, b, err := m.pop2()
		if err != nil {
			return err
		}
		var res int64
		switch instr.Op {
		case OpADD:
			res = a + b
		case OpSUB:
			res = a - b
		case OpMULT:
			res = a * b
		case OpDIV:
			if b == 0 {
				return ErrDivisionByZero
			}
			res = a / b
		}
		return m.push(res)

	case OpINVERT:
		v, err := m.pop()
		if err != nil {
			return err
		}
		return m.push(-v)

	case OpCOMPARE:
		a, b, err := m.pop2()
		if err != nil {
			return err
		}
		ok, err := compare(instr.Arg, a, b)
		if err != nil {
			return err
		}
		if ok {
			return m.push(1)
		}
		return m.push(0)

	case OpJUMP:
		return m.jump(instr.Arg)

	case OpJUMP_YES, OpJUMP_NO:
		v, err := m.pop()
		if err != nil {
			return err
		}
		if (v != 0) == (instr.Op == OpJUMP_YES) {
			return m.jump(instr.Arg)
		}

	case OpINPUT:
		if m.Prompt != nil {
			fmt.Fprint(m.Prompt, "> ")
		}
		var v int64
		if _, err := fmt.Fscan(m.inputSource(), &v); err != nil {
			return fmt.Errorf("%w: %v", ErrBadInput, err)
		}
		return m.push(v)

	case OpPRINT:
		v, err := m.pop()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(m.outputSink(), v); err != nil {
			return fmt.Errorf("vm: write output: %w", err)
		}

	default:
		return fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, uint8(instr.Op))
	}
	return nil
}

// Run executes until STOP, an error, ctx cancellation or the step limit.
func (m *Machine) Run(ctx context.Context) error {
	for !m.halted {
		if m.MaxSteps > 0 && m.Steps >= m.MaxSteps {
			return ErrStepLimit
		}
		if m.Steps&0x3FF == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Execute is a convenience wrapper: load prog into a fresh machine wired to
// in/out and run it to completion.
func Execute(ctx context.Context, prog *Program, in io.Reader, out io.Writer) error {
	m := NewMachine(prog)
	m.Input = in
	m.Output = out
	return m.Run(ctx)
}
