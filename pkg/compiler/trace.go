package compiler

import (
	"fmt"
	"io"
	"strings"
)

// tracer prints BEGIN/END lines around every grammar procedure, indented by
// nesting depth. A nil writer turns it off.
type tracer struct {
	w     io.Writer
	level int
}

func (t *tracer) print(msg string) {
	fmt.Fprintf(t.w, "%s%s\n", strings.Repeat("\t", t.level-1), msg)
}

// trace is called on entry: defer p.untrace(p.trace("statement")).
func (p *Parser) trace(rule string) string {
	if p.tracer.w == nil {
		return rule
	}
	p.tracer.level++
	p.tracer.print("BEGIN " + rule + " " + p.tok.Type.Describe())
	return rule
}

func (p *Parser) untrace(rule string) {
	if p.tracer.w == nil {
		return
	}
	p.tracer.print("END " + rule)
	p.tracer.level--
}
