package compiler

import (
	"fmt"
	"io"

	"milan/pkg/vm"
)

type options struct {
	trace       io.Writer
	diagnostics io.Writer
}

// Option configures a translation.
type Option func(*options)

// WithTrace prints a BEGIN/END line for every grammar procedure to w.
func WithTrace(w io.Writer) Option {
	return func(o *options) { o.trace = w }
}

// WithDiagnostics streams each diagnostic to w as soon as it is found, in
// addition to returning it.
func WithDiagnostics(w io.Writer) Option {
	return func(o *options) { o.diagnostics = w }
}

// Translate reads a whole program from src and emits its code into sink.
// The sink is flushed only when no diagnostic was raised; otherwise the
// returned error is an ErrorList holding every diagnostic in order.
func Translate(src TokenSource, sink CodeSink, opts ...Option) (*VarTable, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	p := newParser(src, sink, o)
	p.program()

	if p.failed() {
		return p.vars, p.diags
	}
	if err := sink.Flush(); err != nil {
		return p.vars, fmt.Errorf("flush: %w", err)
	}
	return p.vars, nil
}

// Result is a successful translation.
type Result struct {
	Vars    *VarTable
	Program *vm.Program
}

// Compile scans and translates source in memory. On failure the returned
// Result still carries the variable table built so far.
func Compile(source string, opts ...Option) (*Result, error) {
	cg := NewCodeGen(nil)
	vars, err := Translate(NewScanner(source), cg, opts...)
	if err != nil {
		return &Result{Vars: vars}, err
	}
	prog, err := cg.Program()
	if err != nil {
		return &Result{Vars: vars}, err
	}
	return &Result{Vars: vars, Program: prog}, nil
}
