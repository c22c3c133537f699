package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

const missingThen = "begin if 1 = 1 write(1) fi end"

func TestDiagnosticPositions(t *testing.T) {
	_, err := Compile(missingThen)
	var list ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("err = %v, want ErrorList", err)
	}
	first := list[0]
	if first.Line != 1 || first.Col != 16 {
		t.Errorf("first diagnostic at %d:%d, want 1:16", first.Line, first.Col)
	}
	want := "line 1:16: 'write' found while 'then' expected."
	if first.Error() != want {
		t.Errorf("Error() = %q, want %q", first.Error(), want)
	}
	if !strings.HasSuffix(err.Error(), fmt.Sprintf("(and %d more errors)", len(list)-1)) {
		t.Errorf("ErrorList.Error() = %q", err.Error())
	}
}

func TestWithDiagnosticsStreams(t *testing.T) {
	var buf bytes.Buffer
	_, err := Compile(missingThen, WithDiagnostics(&buf))
	var list ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("err = %v, want ErrorList", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(list) {
		t.Fatalf("streamed %d lines for %d diagnostics", len(lines), len(list))
	}
	for i, d := range list {
		if lines[i] != d.Error() {
			t.Errorf("line %d = %q, want %q", i, lines[i], d.Error())
		}
	}
}

func TestErrorListErr(t *testing.T) {
	var empty ErrorList
	if empty.Err() != nil {
		t.Error("empty list Err() != nil")
	}
	one := ErrorList{{Kind: ErrComparisonExpected, Line: 2, Col: 3, Msg: "comparison operator expected."}}
	if !errors.Is(one.Err(), ErrComparisonExpected) {
		t.Error("Err() lost the diagnostic kind")
	}
	if one.Error() != "line 2:3: comparison operator expected." {
		t.Errorf("Error() = %q", one.Error())
	}
}

func TestPrintDiagnostics(t *testing.T) {
	_, err := Compile(missingThen)

	var plain bytes.Buffer
	PrintDiagnostics(&plain, missingThen, err, false)
	lines := strings.Split(plain.String(), "\n")
	if lines[0] != "line 1:16: 'write' found while 'then' expected." {
		t.Errorf("first line = %q", lines[0])
	}
	if lines[1] != "  |> "+missingThen {
		t.Errorf("snippet line = %q", lines[1])
	}
	if strings.Contains(plain.String(), "\x1b[") {
		t.Error("plain output contains escape codes")
	}

	var colored bytes.Buffer
	PrintDiagnostics(&colored, missingThen, err, true)
	if !strings.HasPrefix(colored.String(), "\x1b[31m") {
		t.Errorf("colored output = %q", colored.String())
	}

	var other bytes.Buffer
	PrintDiagnostics(&other, missingThen, errors.New("boom"), false)
	if other.String() != "boom\n" {
		t.Errorf("non-diagnostic error printed as %q", other.String())
	}
}
