package asm

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"milan/pkg/vm"
)

// Assembler turns the textual bytecode listing back into instructions.
// Besides the "<addr>:" prefixes written by Format it accepts symbolic
// labels ("loop:") usable as jump operands, resolved in a first pass.
type Assembler struct {
	labels map[string]int
}

type parsedLine struct {
	lineNo   int
	addr     int // -1 when the line carries no numeric address prefix
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]int),
	}
}

// Assemble parses code and returns the instructions together with a map
// from instruction address to 1-based source line.
func Assemble(code string) ([]vm.Instruction, map[int]int, error) {
	return NewAssembler().Assemble(code)
}

// AssembleProgram is Assemble wrapped into a vm.Program.
func AssembleProgram(code string) (*vm.Program, error) {
	instrs, _, err := Assemble(code)
	if err != nil {
		return nil, err
	}
	return &vm.Program{Code: instrs}, nil
}

func (a *Assembler) Assemble(code string) ([]vm.Instruction, map[int]int, error) {
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}

	return a.pass2(lines)
}

func (a *Assembler) pass1(lines []string) error {
	address := 0

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			key := normalizeLabel(lbl)
			if _, exists := a.labels[key]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			a.labels[key] = address
		}

		if p.mnemonic == "" {
			if p.addr >= 0 {
				return fmt.Errorf("address %d without instruction on line %d", p.addr, lineNo)
			}
			continue
		}

		if p.addr >= 0 && p.addr != address {
			return fmt.Errorf("address mismatch on line %d: listing says %d, instruction is at %d", lineNo, p.addr, address)
		}

		if _, ok := vm.Lookup(p.mnemonic); !ok {
			return fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
		}
		address++
	}

	return nil
}

func (a *Assembler) pass2(lines []string) ([]vm.Instruction, map[int]int, error) {
	program := make([]vm.Instruction, 0, len(lines))
	sourceMap := make(map[int]int)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}

		if p.mnemonic == "" {
			continue
		}

		op, _ := vm.Lookup(p.mnemonic)
		instr := vm.Instruction{Op: op}

		if op.HasOperand() {
			if len(p.operands) != 1 {
				return nil, nil, fmt.Errorf("%s expects 1 operand on line %d", p.mnemonic, lineNo)
			}
			arg, err := a.parseOperand(op, p.operands[0], lineNo)
			if err != nil {
				return nil, nil, err
			}
			instr.Arg = arg
		} else if len(p.operands) != 0 {
			return nil, nil, fmt.Errorf("%s expects 0 operands on line %d", p.mnemonic, lineNo)
		}

		sourceMap[len(program)] = lineNo
		program = append(program, instr)
	}

	return program, sourceMap, nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo, addr: -1}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t") {
			break
		}

		if n, err := strconv.Atoi(beforeColon); err == nil {
			if p.addr >= 0 || n < 0 {
				return p, fmt.Errorf("invalid address prefix '%s' on line %d", beforeColon, lineNo)
			}
			p.addr = n
		} else if isIdentifier(beforeColon) {
			p.labels = append(p.labels, beforeColon)
		} else {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	fields := strings.Fields(normalizeInstructionText(line))
	if len(fields) == 0 {
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		p.operands = fields[1:]
	}

	return p, nil
}

func stripComments(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

func normalizeInstructionText(line string) string {
	return strings.ReplaceAll(line, ",", " ")
}

func (a *Assembler) parseOperand(op vm.Opcode, token string, lineNo int) (int64, error) {
	if value, err := strconv.ParseInt(token, 10, 64); err == nil {
		return value, nil
	}

	if op.IsJump() {
		if addr, ok := a.labels[normalizeLabel(token)]; ok {
			return int64(addr), nil
		}
		if isIdentifier(token) {
			return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
		}
	}

	return 0, fmt.Errorf("invalid operand '%s' on line %d", token, lineNo)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}

// Format renders instructions in the listing format read by Assemble:
// one "<addr>:\t<MNEMONIC>[\t<operand>]" line per instruction.
func Format(code []vm.Instruction) string {
	var sb strings.Builder
	_ = Write(&sb, code)
	return sb.String()
}

// Write streams the listing for code to w.
func Write(w io.Writer, code []vm.Instruction) error {
	for addr, instr := range code {
		if _, err := fmt.Fprintf(w, "%d:\t%s\n", addr, instr); err != nil {
			return err
		}
	}
	return nil
}
