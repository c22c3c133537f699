package compiler

import (
	"fmt"
	"io"

	"milan/pkg/vm"
)

// Parser is a predictive recursive-descent translator: one method per
// grammar rule, one token of lookahead, code emitted as constructs are
// recognised.
//
// Grammar:
//
//	program       = "begin" statementList "end"
//	statementList = [ statement { ";" statement } ]
//	statement     = IDENT ":=" expression
//	              | "if" relation "then" statementList [ "else" statementList ] "fi"
//	              | "while" relation "do" statementList "od"
//	              | "for" IDENT ":=" expression { "," expression } "do" statementList "od"
//	              | "write" "(" expression ")"
//	relation      = expression CMP expression
//	expression    = term { ADDOP term }
//	term          = factor { MULOP factor }
//	factor        = NUMBER | IDENT | "-" factor | "(" expression ")" | "read"
//
// Each method returns with the lookahead on the first token past its
// production. A Parser serves exactly one translation.
type Parser struct {
	src  TokenSource
	tok  Token
	code CodeSink
	vars *VarTable

	diags  ErrorList
	report io.Writer
	tracer tracer

	// for-loop selector cells are addressed past the last variable, which
	// is only known once the program has been read. Their LOAD/STORE
	// instructions are reserved and patched at the end.
	forDepth  int
	selectors []selectorRef
}

type selectorRef struct {
	slot  int
	op    vm.Opcode
	depth int
}

func newParser(src TokenSource, code CodeSink, o options) *Parser {
	return &Parser{
		src:    src,
		tok:    src.Token(),
		code:   code,
		vars:   NewVarTable(),
		report: o.diagnostics,
		tracer: tracer{w: o.trace},
	}
}

// failed reports whether any diagnostic was raised.
func (p *Parser) failed() bool {
	return len(p.diags) > 0
}

func (p *Parser) next() {
	p.src.Next()
	p.tok = p.src.Token()
}

// see reports whether the current token has type tt.
func (p *Parser) see(tt TokenType) bool {
	return p.tok.Type == tt
}

// match consumes the current token if it has type tt.
func (p *Parser) match(tt TokenType) bool {
	if p.tok.Type != tt {
		return false
	}
	p.next()
	return true
}

// errorf records a diagnostic at the current token.
func (p *Parser) errorf(kind error, format string, args ...any) {
	d := &Diagnostic{
		Kind: kind,
		Line: p.tok.Line,
		Col:  p.tok.Col,
		Msg:  fmt.Sprintf(format, args...),
	}
	p.diags = append(p.diags, d)
	if p.report != nil {
		fmt.Fprintln(p.report, d)
	}
}

// mustBe consumes a token of type tt or reports the mismatch and skips to
// the next tt (consuming it) or to end of input.
func (p *Parser) mustBe(tt TokenType) {
	if p.match(tt) {
		return
	}
	p.errorf(ErrUnexpectedToken, "%s found while %s expected.", p.tok.describe(), tt.Describe())
	p.recover(tt)
}

func (p *Parser) recover(tt TokenType) {
	for !p.see(tt) && !p.see(EOF) {
		p.next()
	}
	if p.see(tt) {
		p.next()
	}
}

func (p *Parser) program() {
	defer p.untrace(p.trace("program"))

	p.mustBe(BEGIN)
	p.statementList()
	p.mustBe(END)
	p.patchSelectors()
	p.code.Emit(vm.OpSTOP)
}

// statementList is empty when the next token closes the enclosing block.
// The last statement is the one not followed by a semicolon.
func (p *Parser) statementList() {
	defer p.untrace(p.trace("statementList"))

	if p.see(END) || p.see(OD) || p.see(ELSE) || p.see(FI) {
		return
	}
	for more := true; more; more = p.match(SEMICOLON) {
		p.statement()
	}
}

func (p *Parser) statement() {
	defer p.untrace(p.trace("statement"))

	switch {
	case p.see(IDENTIFIER):
		addr := p.vars.FindOrAdd(p.tok.Ident())
		p.next()
		p.mustBe(ASSIGN)
		p.expression()
		p.code.EmitArg(vm.OpSTORE, int64(addr))

	case p.match(IF):
		p.ifStatement()

	case p.match(WHILE):
		p.whileStatement()

	case p.match(FOR):
		p.forStatement()

	case p.match(WRITE):
		p.mustBe(LPAREN)
		p.expression()
		p.mustBe(RPAREN)
		p.code.Emit(vm.OpPRINT)

	default:
		p.errorf(ErrConstructExpected, "statement expected.")
	}
}

// ifStatement is entered with "if" consumed. The relation leaves 0 or 1;
// a JUMP_NO to the else branch (or past the statement) is reserved, and
// with an else branch a JUMP over it closes the then branch.
func (p *Parser) ifStatement() {
	p.relation()
	jumpNo := p.code.Reserve()

	p.mustBe(THEN)
	p.statementList()

	if p.match(ELSE) {
		jump := p.code.Reserve()
		p.code.EmitAt(jumpNo, vm.OpJUMP_NO, p.here())
		p.statementList()
		p.code.EmitAt(jump, vm.OpJUMP, p.here())
	} else {
		p.code.EmitAt(jumpNo, vm.OpJUMP_NO, p.here())
	}

	p.mustBe(FI)
}

func (p *Parser) whileStatement() {
	top := p.here()
	p.relation()
	exit := p.code.Reserve()

	p.mustBe(DO)
	p.statementList()
	p.mustBe(OD)

	p.code.EmitArg(vm.OpJUMP, top)
	p.code.EmitAt(exit, vm.OpJUMP_NO, p.here())
}

// forStatement is entered with "for" consumed.
//
// "for x := e1, ..., en do S od" runs S once per expression, storing ei into
// x before the i-th pass. Each ei is evaluated just before its pass. With
// more than one expression a hidden selector k records which expression
// ran last, and a dispatch chain after S resumes at the next one:
//
//	E1:   e1  STORE x  PUSH 1 STORE k  JUMP BODY
//	...
//	En:   en  STORE x  PUSH n STORE k
//	BODY: S
//	      LOAD k PUSH i COMPARE = JUMP_NO +2 JUMP E(i+1)   for i in 1..n-1
func (p *Parser) forStatement() {
	var addr int
	if p.see(IDENTIFIER) {
		addr = p.vars.FindOrAdd(p.tok.Ident())
		p.next()
	} else {
		p.mustBe(IDENTIFIER)
	}
	p.mustBe(ASSIGN)

	depth := p.forDepth
	p.forDepth++
	defer func() { p.forDepth-- }()

	var starts, toBody []int
	for {
		starts = append(starts, int(p.here()))
		p.expression()
		p.code.EmitArg(vm.OpSTORE, int64(addr))

		more := p.match(COMMA)
		if more || len(starts) > 1 {
			p.code.EmitArg(vm.OpPUSH, int64(len(starts)))
			p.selector(vm.OpSTORE, depth)
		}
		if !more {
			break
		}
		toBody = append(toBody, p.code.Reserve())
	}

	p.mustBe(DO)
	for _, slot := range toBody {
		p.code.EmitAt(slot, vm.OpJUMP, p.here())
	}
	p.statementList()
	p.mustBe(OD)

	for i := 1; i < len(starts); i++ {
		p.selector(vm.OpLOAD, depth)
		p.code.EmitArg(vm.OpPUSH, int64(i))
		p.code.EmitArg(vm.OpCOMPARE, int64(EQ))
		p.code.EmitArg(vm.OpJUMP_NO, p.here()+2)
		p.code.EmitArg(vm.OpJUMP, int64(starts[i]))
	}
}

// selector reserves a LOAD or STORE of the selector cell for depth.
func (p *Parser) selector(op vm.Opcode, depth int) {
	slot := p.code.Reserve()
	p.selectors = append(p.selectors, selectorRef{slot: slot, op: op, depth: depth})
}

// patchSelectors places the selector cells right after the variables.
func (p *Parser) patchSelectors() {
	base := p.vars.Len()
	for _, s := range p.selectors {
		p.code.EmitAt(s.slot, s.op, int64(base+s.depth))
	}
	p.selectors = nil
}

// relation compiles exactly one comparison and leaves 0 or 1 on the stack.
func (p *Parser) relation() {
	defer p.untrace(p.trace("relation"))

	p.expression()
	if !p.see(CMP) {
		p.errorf(ErrComparisonExpected, "comparison operator expected.")
		return
	}
	rel := p.tok.Cmp()
	p.next()
	p.expression()
	p.code.EmitArg(vm.OpCOMPARE, int64(rel))
}

func (p *Parser) expression() {
	defer p.untrace(p.trace("expression"))

	p.term()
	for p.see(ADDOP) {
		op := p.tok.Arith()
		p.next()
		p.term()
		if op == PLUS {
			p.code.Emit(vm.OpADD)
		} else {
			p.code.Emit(vm.OpSUB)
		}
	}
}

func (p *Parser) term() {
	defer p.untrace(p.trace("term"))

	p.factor()
	for p.see(MULOP) {
		op := p.tok.Arith()
		p.next()
		p.factor()
		if op == MULTIPLY {
			p.code.Emit(vm.OpMULT)
		} else {
			p.code.Emit(vm.OpDIV)
		}
	}
}

func (p *Parser) factor() {
	defer p.untrace(p.trace("factor"))

	switch {
	case p.see(NUMBER):
		p.code.EmitArg(vm.OpPUSH, p.tok.Int())
		p.next()

	case p.see(IDENTIFIER):
		addr := p.vars.FindOrAdd(p.tok.Ident())
		p.next()
		p.code.EmitArg(vm.OpLOAD, int64(addr))

	case p.see(ADDOP) && p.tok.Arith() == MINUS:
		p.next()
		p.factor()
		p.code.Emit(vm.OpINVERT)

	case p.match(LPAREN):
		p.expression()
		p.mustBe(RPAREN)

	case p.match(READ):
		p.code.Emit(vm.OpINPUT)

	default:
		p.errorf(ErrConstructExpected, "expression expected.")
	}
}

// here is the address of the next instruction, as a jump operand.
func (p *Parser) here() int64 {
	return int64(p.code.CurrentAddress())
}
