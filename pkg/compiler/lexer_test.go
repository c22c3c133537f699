package compiler

import (
	"reflect"
	"testing"
)

// lexed is the comparable part of a Token.
type lexed struct {
	Type   TokenType
	Lexeme string
	Line   int
	Col    int
}

func lexAll(src string) []lexed {
	var out []lexed
	for _, tok := range Lex(src) {
		out = append(out, lexed{tok.Type, tok.Lexeme, tok.Line, tok.Col})
	}
	return out
}

func TestLex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []lexed
	}{
		{
			name:  "Empty",
			input: "",
			expected: []lexed{
				{EOF, "", 1, 1},
			},
		},
		{
			name:  "Punctuation",
			input: "( ) ; , :=",
			expected: []lexed{
				{LPAREN, "(", 1, 1},
				{RPAREN, ")", 1, 3},
				{SEMICOLON, ";", 1, 5},
				{COMMA, ",", 1, 7},
				{ASSIGN, ":=", 1, 9},
				{EOF, "", 1, 11},
			},
		},
		{
			name:  "Operators",
			input: "+-*/ = != < > <= >=",
			expected: []lexed{
				{ADDOP, "+", 1, 1},
				{ADDOP, "-", 1, 2},
				{MULOP, "*", 1, 3},
				{MULOP, "/", 1, 4},
				{CMP, "=", 1, 6},
				{CMP, "!=", 1, 8},
				{CMP, "<", 1, 11},
				{CMP, ">", 1, 13},
				{CMP, "<=", 1, 15},
				{CMP, ">=", 1, 18},
				{EOF, "", 1, 20},
			},
		},
		{
			name:  "Keywords are case-insensitive",
			input: "BEGIN If tHeN fi end",
			expected: []lexed{
				{BEGIN, "BEGIN", 1, 1},
				{IF, "If", 1, 7},
				{THEN, "tHeN", 1, 10},
				{FI, "fi", 1, 15},
				{END, "end", 1, 18},
				{EOF, "", 1, 21},
			},
		},
		{
			name:  "Identifiers and numbers",
			input: "x1 := 42;\nwhile_ 007",
			expected: []lexed{
				{IDENTIFIER, "x1", 1, 1},
				{ASSIGN, ":=", 1, 4},
				{NUMBER, "42", 1, 7},
				{SEMICOLON, ";", 1, 9},
				{IDENTIFIER, "while_", 2, 1},
				{NUMBER, "007", 2, 8},
				{EOF, "", 2, 11},
			},
		},
		{
			name:  "Comments",
			input: "a /* skip\n me */ b /* never closed",
			expected: []lexed{
				{IDENTIFIER, "a", 1, 1},
				{IDENTIFIER, "b", 2, 8},
				{EOF, "", 2, 25},
			},
		},
		{
			name:  "Illegal characters",
			input: "a : ! #",
			expected: []lexed{
				{IDENTIFIER, "a", 1, 1},
				{ILLEGAL, ":", 1, 3},
				{ILLEGAL, "!", 1, 5},
				{ILLEGAL, "#", 1, 7},
				{EOF, "", 1, 8},
			},
		},
		{
			name:  "Overflowing literal",
			input: "99999999999999999999",
			expected: []lexed{
				{ILLEGAL, "99999999999999999999", 1, 1},
				{EOF, "", 1, 21},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lexAll(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Lex(%q)\n got: %v\nwant: %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLexPayloads(t *testing.T) {
	toks := Lex("12 + - * / = != < > <= >=")

	if v := toks[0].Int(); v != 12 {
		t.Errorf("Int() = %d, want 12", v)
	}
	arith := []Arithmetic{PLUS, MINUS, MULTIPLY, DIVIDE}
	for i, want := range arith {
		if got := toks[1+i].Arith(); got != want {
			t.Errorf("token %d: Arith() = %d, want %d", 1+i, got, want)
		}
	}
	rels := []Relation{EQ, NE, LT, GT, LE, GE}
	for i, want := range rels {
		if got := toks[5+i].Cmp(); got != want {
			t.Errorf("token %d: Cmp() = %d, want %d", 5+i, got, want)
		}
	}
}

func TestTokenAccessorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Int() on an IDENTIFIER did not panic")
		}
	}()
	IdentTok("x").Int()
}

func TestScannerStaysAtEOF(t *testing.T) {
	s := NewScanner("x")
	s.Next()
	for i := 0; i < 3; i++ {
		if s.Token().Type != EOF {
			t.Fatalf("after %d extra Next calls: got %s, want EOF", i, s.Token().Type)
		}
		s.Next()
	}
}

func TestSliceSource(t *testing.T) {
	src := NewSliceSource(Tok(BEGIN), IdentTok("x"))
	if src.Token().Type != BEGIN {
		t.Fatalf("first token = %s, want BEGIN", src.Token().Type)
	}
	src.Next()
	if got := src.Token().Ident(); got != "x" {
		t.Fatalf("second token = %q, want x", got)
	}
	src.Next()
	src.Next()
	if src.Token().Type != EOF {
		t.Fatalf("past the end = %s, want EOF", src.Token().Type)
	}
}
