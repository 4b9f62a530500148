package token

import (
	"fmt"
	"slices"
	"strconv"
)

type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF

	IDENT    // main, x, i32
	KEYWORD  // func, return, if, ...
	INT      // 1343456
	OPERATOR // one of + - / * . < > = ! %

	TERMINATOR // ;
	DELIMITER  // ,

	LPAREN // (
	RPAREN // )
	LBRACE // {
	RBRACE // }
	LBRACK // [
	RBRACK // ]
)

var tokens = [...]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",

	IDENT:    "IDENT",
	KEYWORD:  "KEYWORD",
	INT:      "INT",
	OPERATOR: "OPERATOR",

	TERMINATOR: ";",
	DELIMITER:  ",",

	LPAREN: "(",
	RPAREN: ")",
	LBRACE: "{",
	RBRACE: "}",
	LBRACK: "[",
	RBRACK: "]",
}

func (tokenType TokenType) String() string {
	s := ""
	if 0 <= tokenType && tokenType < TokenType(len(tokens)) {
		s = tokens[tokenType]
	}

	if s == "" {
		s = "token(" + strconv.Itoa(int(tokenType)) + ")"
	}

	return s
}

// Keywords. Everything else that lexes like an identifier is an IDENT.
const (
	FUNC   = "func"
	RETURN = "return"
	IMPORT = "import"
	EXPORT = "export"
	MODULE = "module"
	IF     = "if"
	FOR    = "for"
	WHILE  = "while"
)

var keywords = []string{FUNC, RETURN, IMPORT, EXPORT, MODULE, IF, FOR, WHILE}

// IsKeyword reports whether ident is reserved.
func IsKeyword(ident string) bool {
	return slices.Contains(keywords, ident)
}

// Operator characters recognised by the lexer. Multi-character operators
// such as "<=" or "->" are rebuilt by the parser.
const OperatorChars = "+-/*.<>=!%"

// Position is a 1-based line and column in the source text.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is immutable once produced. Terminators, brackets and delimiters
// carry an empty Literal.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

func (t Token) HasValue() bool {
	return t.Literal != ""
}

// Is reports whether t has type tt and, when literal is non-empty, that
// exact literal.
func (t Token) Is(tt TokenType, literal string) bool {
	if t.Type != tt {
		return false
	}
	return literal == "" || t.Literal == literal
}

func (t Token) String() string {
	if t.Literal == "" {
		return t.Type.String()
	}
	return fmt.Sprintf("%s(%s)", t.Type, t.Literal)
}
