package compiler

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Diagnostic kinds. Every Diagnostic unwraps to one of these.
var (
	ErrUnexpectedToken    = errors.New("unexpected token")
	ErrConstructExpected  = errors.New("construct expected")
	ErrComparisonExpected = errors.New("comparison operator expected")
)

// Code sink consistency errors.
var (
	ErrUnpatchedSlot  = errors.New("codegen: reserved slot was never patched")
	ErrJumpOutOfRange = errors.New("codegen: jump target out of range")
)

// Diagnostic is one problem found during translation.
type Diagnostic struct {
	Kind error
	Line int
	Col  int
	Msg  string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("line %d:%d: %s", d.Line, d.Col, d.Msg)
}

func (d *Diagnostic) Unwrap() error {
	return d.Kind
}

// ErrorList collects every diagnostic of a failed translation in the order
// they were found.
type ErrorList []*Diagnostic

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
}

func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, d := range l {
		errs[i] = d
	}
	return errs
}

// Err returns l as an error, or nil when it is empty.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// PrintDiagnostics writes each diagnostic in err followed by the offending
// source line, the way the parser's messages are shown on the command line.
// Errors that are not translation diagnostics are printed as-is.
func PrintDiagnostics(w io.Writer, source string, err error, color bool) {
	var list ErrorList
	if !errors.As(err, &list) {
		fmt.Fprintln(w, err)
		return
	}

	lines := strings.Split(source, "\n")
	for _, d := range list {
		msg := d.Error()
		if color {
			msg = "\x1b[31m" + msg + "\x1b[0m"
		}
		fmt.Fprintln(w, msg)

		lineIdx := d.Line - 1 // Lines are 1-based
		if lineIdx >= 0 && lineIdx < len(lines) {
			fmt.Fprintf(w, "  |> %s\n", strings.TrimSpace(lines[lineIdx]))
		}
	}
}
