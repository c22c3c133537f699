package compiler

import (
	"strconv"
	"strings"
	"unicode"
)

// TokenSource is the parser's view of a lexer: one current token and a way
// to move past it. Next is synchronous and never looks further ahead.
type TokenSource interface {
	Token() Token
	Next()
}

// Scanner holds all mutable state for a single scanning pass over src and
// produces tokens on demand.
type Scanner struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	col  int // 1-based column of the next rune

	tok Token
}

// NewScanner returns a scanner positioned on the first token of src.
func NewScanner(src string) *Scanner {
	s := &Scanner{src: []rune(src), line: 1, col: 1}
	s.Next()
	return s
}

// Token returns the current token.
func (s *Scanner) Token() Token {
	return s.tok
}

// Next discards the current token and scans the following one. Once EOF is
// reached it stays there.
func (s *Scanner) Next() {
	s.tok = s.nextToken()
}

// peek returns the rune at the current position without advancing.
func (s *Scanner) peek() rune {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (s *Scanner) peek2() rune {
	if s.pos+1 >= len(s.src) {
		return 0
	}
	return s.src[s.pos+1]
}

// advance consumes one rune and returns it.
func (s *Scanner) advance() rune {
	if s.pos >= len(s.src) {
		return 0
	}
	r := s.src[s.pos]
	s.pos++
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return r
}

func (s *Scanner) skipWhitespace() {
	for s.pos < len(s.src) && unicode.IsSpace(s.peek()) {
		s.advance()
	}
}

// skipBlockComment discards everything up to and including the closing "*/".
// The opening "/*" must already have been consumed. An unterminated comment
// swallows the rest of the input.
func (s *Scanner) skipBlockComment() {
	for s.pos < len(s.src) {
		if s.peek() == '*' && s.peek2() == '/' {
			s.advance() // *
			s.advance() // /
			return
		}
		s.advance()
	}
}

// scanIdent collects a full identifier or keyword token.
func (s *Scanner) scanIdent(line, col int) Token {
	start := s.pos
	for s.pos < len(s.src) {
		r := s.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		s.advance()
	}
	lexeme := string(s.src[start:s.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[strings.ToLower(lexeme)]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Line: line, Col: col}
}

// scanNumber collects a decimal literal. Values that overflow int64 come
// back as ILLEGAL so the parser reports them.
func (s *Scanner) scanNumber(line, col int) Token {
	start := s.pos
	for s.pos < len(s.src) && unicode.IsDigit(s.peek()) {
		s.advance()
	}
	lexeme := string(s.src[start:s.pos])
	v, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return Token{Type: ILLEGAL, Lexeme: lexeme, Line: line, Col: col}
	}
	return Token{Type: NUMBER, Lexeme: lexeme, Line: line, Col: col, num: v}
}

// nextToken skips whitespace and comments and returns the next Token.
func (s *Scanner) nextToken() Token {
	for {
		s.skipWhitespace()
		if s.peek() == '/' && s.peek2() == '*' {
			s.advance()
			s.advance()
			s.skipBlockComment()
			continue
		}
		break
	}

	line, col := s.line, s.col
	if s.pos >= len(s.src) {
		return Token{Type: EOF, Line: line, Col: col}
	}

	ch := s.peek()
	if unicode.IsLetter(ch) || ch == '_' {
		return s.scanIdent(line, col)
	}
	if unicode.IsDigit(ch) {
		return s.scanNumber(line, col)
	}

	tok := func(tt TokenType, lexeme string) Token {
		return Token{Type: tt, Lexeme: lexeme, Line: line, Col: col}
	}

	s.advance() // consume the character before the switch
	switch ch {
	case '(':
		return tok(LPAREN, "(")
	case ')':
		return tok(RPAREN, ")")
	case ';':
		return tok(SEMICOLON, ";")
	case ',':
		return tok(COMMA, ",")
	case ':':
		if s.peek() == '=' {
			s.advance()
			return tok(ASSIGN, ":=")
		}
		return tok(ILLEGAL, ":")
	case '+':
		t := tok(ADDOP, "+")
		t.arith = PLUS
		return t
	case '-':
		t := tok(ADDOP, "-")
		t.arith = MINUS
		return t
	case '*':
		t := tok(MULOP, "*")
		t.arith = MULTIPLY
		return t
	case '/':
		t := tok(MULOP, "/")
		t.arith = DIVIDE
		return t
	case '=':
		return s.relation(tok(CMP, "="), EQ)
	case '!':
		if s.peek() == '=' {
			s.advance()
			return s.relation(tok(CMP, "!="), NE)
		}
		return tok(ILLEGAL, "!")
	case '<':
		if s.peek() == '=' {
			s.advance()
			return s.relation(tok(CMP, "<="), LE)
		}
		return s.relation(tok(CMP, "<"), LT)
	case '>':
		if s.peek() == '=' {
			s.advance()
			return s.relation(tok(CMP, ">="), GE)
		}
		return s.relation(tok(CMP, ">"), GT)
	default:
		return tok(ILLEGAL, string(ch))
	}
}

func (s *Scanner) relation(t Token, rel Relation) Token {
	t.cmp = rel
	return t
}

// Lex tokenises src and returns all tokens including the final EOF token.
func Lex(src string) []Token {
	s := NewScanner(src)
	var tokens []Token
	for {
		tok := s.Token()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
		s.Next()
	}
}

// SliceSource replays a prepared token slice. Positions past the end read
// as EOF.
type SliceSource struct {
	tokens []Token
	pos    int
}

func NewSliceSource(tokens ...Token) *SliceSource {
	return &SliceSource{tokens: tokens}
}

func (s *SliceSource) Token() Token {
	if s.pos >= len(s.tokens) {
		return Token{Type: EOF}
	}
	return s.tokens[s.pos]
}

func (s *SliceSource) Next() {
	if s.pos < len(s.tokens) {
		s.pos++
	}
}
