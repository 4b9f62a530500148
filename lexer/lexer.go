package lexer

import (
	"fmt"
	"strings"

	"github.com/thiremani/cepheid/token"
)

type Lexer struct {
	input        []rune
	position     int  // current position in input (points to current rune)
	readPosition int  // current reading position in input (after current rune)
	curr         rune // current rune under examination
	line         int
	column       int
	atEOF        bool // curr is past the last rune; a NUL in the input is not EOF
}

func New(input string) *Lexer {
	l := &Lexer{input: []rune(input), line: 1}
	l.readRune()
	return l
}

// Tokenize lexes the whole of src. The first unrecognised character aborts
// with a LexPhase CompileError.
func Tokenize(src string) ([]token.Token, error) {
	l := New(src)
	toks := []token.Token{}
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == token.EOF {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespace()

	pos := token.Position{Line: l.line, Column: l.column}
	tok := token.Token{Pos: pos}

	if l.atEOF {
		tok.Type = token.EOF
		return tok, nil
	}

	switch l.curr {
	case ';':
		tok.Type = token.TERMINATOR
	case ',':
		tok.Type = token.DELIMITER
	case '(':
		tok.Type = token.LPAREN
	case ')':
		tok.Type = token.RPAREN
	case '{':
		tok.Type = token.LBRACE
	case '}':
		tok.Type = token.RBRACE
	case '[':
		tok.Type = token.LBRACK
	case ']':
		tok.Type = token.RBRACK
	default:
		if isLetter(l.curr) {
			tok.Literal = l.readIdentifier()
			tok.Type = token.IDENT
			if token.IsKeyword(tok.Literal) {
				tok.Type = token.KEYWORD
			}
			return tok, nil
		}
		if isDigit(l.curr) {
			tok.Type = token.INT
			tok.Literal = l.readNumber()
			return tok, nil
		}
		if strings.ContainsRune(token.OperatorChars, l.curr) {
			tok.Type = token.OPERATOR
			tok.Literal = string(l.curr)
			break
		}
		tok.Type = token.ILLEGAL
		tok.Literal = string(l.curr)
		return tok, &token.CompileError{
			Phase: token.LexPhase,
			Token: tok,
			Msg:   fmt.Sprintf("unexpected character %q", l.curr),
		}
	}

	l.readRune()
	return tok, nil
}

func (l *Lexer) skipWhitespace() {
	for l.curr == ' ' || l.curr == '\t' || l.curr == '\n' || l.curr == '\r' {
		l.readRune()
	}
}

func (l *Lexer) readRune() {
	if l.curr == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.curr = 0
		l.atEOF = true
	} else {
		l.curr = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.curr) || isDigit(l.curr) {
		l.readRune()
	}
	return string(l.input[position:l.position])
}

func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.curr) {
		l.readRune()
	}
	return string(l.input[position:l.position])
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
