package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF     TokenType = iota // sentinel: end of input
	ILLEGAL                  // unrecognised character or malformed literal

	// Literals
	IDENTIFIER // variable name
	NUMBER     // decimal integer literal

	// Keywords
	BEGIN // "begin"
	END   // "end"
	IF    // "if"
	THEN  // "then"
	ELSE  // "else"
	FI    // "fi"
	WHILE // "while"
	DO    // "do"
	OD    // "od"
	FOR   // "for"
	WRITE // "write"
	READ  // "read"

	// Operators; ADDOP, MULOP and CMP carry which operator in the payload.
	ASSIGN // :=
	ADDOP  // + -
	MULOP  // * /
	CMP    // = != < > <= >=

	// Punctuation
	LPAREN    // (
	RPAREN    // )
	SEMICOLON // ;
	COMMA     // ,
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:        "EOF",
	ILLEGAL:    "ILLEGAL",
	IDENTIFIER: "IDENTIFIER",
	NUMBER:     "NUMBER",
	BEGIN:      "BEGIN",
	END:        "END",
	IF:         "IF",
	THEN:       "THEN",
	ELSE:       "ELSE",
	FI:         "FI",
	WHILE:      "WHILE",
	DO:         "DO",
	OD:         "OD",
	FOR:        "FOR",
	WRITE:      "WRITE",
	READ:       "READ",
	ASSIGN:     "ASSIGN",
	ADDOP:      "ADDOP",
	MULOP:      "MULOP",
	CMP:        "CMP",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	SEMICOLON:  "SEMICOLON",
	COMMA:      "COMMA",
}

// descriptions are the human-readable forms used in diagnostics.
var descriptions = [...]string{
	EOF:        "end of file",
	ILLEGAL:    "illegal token",
	IDENTIFIER: "identifier",
	NUMBER:     "number",
	BEGIN:      "'begin'",
	END:        "'end'",
	IF:         "'if'",
	THEN:       "'then'",
	ELSE:       "'else'",
	FI:         "'fi'",
	WHILE:      "'while'",
	DO:         "'do'",
	OD:         "'od'",
	FOR:        "'for'",
	WRITE:      "'write'",
	READ:       "'read'",
	ASSIGN:     "':='",
	ADDOP:      "'+' or '-'",
	MULOP:      "'*' or '/'",
	CMP:        "comparison operator",
	LPAREN:     "'('",
	RPAREN:     "')'",
	SEMICOLON:  "';'",
	COMMA:      "','",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Describe returns the form of tt used in "found while expected" messages.
func (tt TokenType) Describe() string {
	if int(tt) >= 0 && int(tt) < len(descriptions) {
		return descriptions[tt]
	}
	return tt.String()
}

// keywords maps lower-cased source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"begin": BEGIN,
	"end":   END,
	"if":    IF,
	"then":  THEN,
	"else":  ELSE,
	"fi":    FI,
	"while": WHILE,
	"do":    DO,
	"od":    OD,
	"for":   FOR,
	"write": WRITE,
	"read":  READ,
}

// Arithmetic is the payload of ADDOP and MULOP tokens.
type Arithmetic int

const (
	PLUS Arithmetic = iota
	MINUS
	MULTIPLY
	DIVIDE
)

// Relation is the payload of CMP tokens. Values equal the COMPARE
// discriminants of the stack machine.
type Relation int

const (
	EQ Relation = iota // =
	NE                 // !=
	LT                 // <
	GT                 // >
	LE                 // <=
	GE                 // >=
)

// Token is a single lexical unit. Payload accessors panic when called on
// a token of the wrong type; the parser always checks Type first.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line
	Col    int    // 1-based column

	num   int64
	arith Arithmetic
	cmp   Relation
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-8q  line %d:%d", t.Type, t.Lexeme, t.Line, t.Col)
}

func (t Token) mustBe(tt TokenType) {
	if t.Type != tt {
		panic(fmt.Sprintf("compiler: %s accessor used on %s token", tt, t.Type))
	}
}

// Ident returns the name of an IDENTIFIER token.
func (t Token) Ident() string {
	t.mustBe(IDENTIFIER)
	return t.Lexeme
}

// Int returns the value of a NUMBER token.
func (t Token) Int() int64 {
	t.mustBe(NUMBER)
	return t.num
}

// Arith returns the operator of an ADDOP or MULOP token.
func (t Token) Arith() Arithmetic {
	if t.Type != MULOP {
		t.mustBe(ADDOP)
	}
	return t.arith
}

// Cmp returns the relation of a CMP token.
func (t Token) Cmp() Relation {
	t.mustBe(CMP)
	return t.cmp
}

func (t Token) describe() string {
	if t.Type == ILLEGAL {
		return fmt.Sprintf("illegal token %q", t.Lexeme)
	}
	return t.Type.Describe()
}

// Tok builds a payload-free token, mostly for feeding a SliceSource.
func Tok(tt TokenType) Token {
	return Token{Type: tt, Lexeme: lexemeOf(tt)}
}

// IdentTok builds an IDENTIFIER token.
func IdentTok(name string) Token {
	return Token{Type: IDENTIFIER, Lexeme: name}
}

// NumberTok builds a NUMBER token.
func NumberTok(v int64) Token {
	return Token{Type: NUMBER, Lexeme: fmt.Sprint(v), num: v}
}

// ArithTok builds an ADDOP or MULOP token for op.
func ArithTok(op Arithmetic) Token {
	switch op {
	case PLUS:
		return Token{Type: ADDOP, Lexeme: "+", arith: op}
	case MINUS:
		return Token{Type: ADDOP, Lexeme: "-", arith: op}
	case MULTIPLY:
		return Token{Type: MULOP, Lexeme: "*", arith: op}
	default:
		return Token{Type: MULOP, Lexeme: "/", arith: DIVIDE}
	}
}

var relationLexemes = [...]string{EQ: "=", NE: "!=", LT: "<", GT: ">", LE: "<=", GE: ">="}

// CmpTok builds a CMP token for rel.
func CmpTok(rel Relation) Token {
	return Token{Type: CMP, Lexeme: relationLexemes[rel], cmp: rel}
}

func lexemeOf(tt TokenType) string {
	for kw, t := range keywords {
		if t == tt {
			return kw
		}
	}
	switch tt {
	case ASSIGN:
		return ":="
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	case SEMICOLON:
		return ";"
	case COMMA:
		return ","
	}
	return ""
}
