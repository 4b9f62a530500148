package lexer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thiremani/cepheid/token"
)

type Test struct {
	expectedType    token.TokenType
	expectedLiteral string
}

func checkInput(t *testing.T, input string, tests []Test) {
	toks, err := Tokenize(input)
	require.NoError(t, err)
	require.Len(t, toks, len(tests))

	for i, tt := range tests {
		if toks[i].Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, toks[i].Type)
		}

		if toks[i].Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, toks[i].Literal)
		}
	}
}

func TestNextToken(t *testing.T) {
	input := `func main() -> i32 {
    i32 x = 5;
    if (x >= 3) { return x % 2; }
    while (x != 0) { x = x - 1; }
    return arr[0], a.b;
}`

	tests := []Test{
		{token.KEYWORD, "func"},
		{token.IDENT, "main"},
		{token.LPAREN, ""},
		{token.RPAREN, ""},
		{token.OPERATOR, "-"},
		{token.OPERATOR, ">"},
		{token.IDENT, "i32"},
		{token.LBRACE, ""},

		{token.IDENT, "i32"},
		{token.IDENT, "x"},
		{token.OPERATOR, "="},
		{token.INT, "5"},
		{token.TERMINATOR, ""},

		{token.KEYWORD, "if"},
		{token.LPAREN, ""},
		{token.IDENT, "x"},
		{token.OPERATOR, ">"},
		{token.OPERATOR, "="},
		{token.INT, "3"},
		{token.RPAREN, ""},
		{token.LBRACE, ""},
		{token.KEYWORD, "return"},
		{token.IDENT, "x"},
		{token.OPERATOR, "%"},
		{token.INT, "2"},
		{token.TERMINATOR, ""},
		{token.RBRACE, ""},

		{token.KEYWORD, "while"},
		{token.LPAREN, ""},
		{token.IDENT, "x"},
		{token.OPERATOR, "!"},
		{token.OPERATOR, "="},
		{token.INT, "0"},
		{token.RPAREN, ""},
		{token.LBRACE, ""},
		{token.IDENT, "x"},
		{token.OPERATOR, "="},
		{token.IDENT, "x"},
		{token.OPERATOR, "-"},
		{token.INT, "1"},
		{token.TERMINATOR, ""},
		{token.RBRACE, ""},

		{token.KEYWORD, "return"},
		{token.IDENT, "arr"},
		{token.LBRACK, ""},
		{token.INT, "0"},
		{token.RBRACK, ""},
		{token.DELIMITER, ""},
		{token.IDENT, "a"},
		{token.OPERATOR, "."},
		{token.IDENT, "b"},
		{token.TERMINATOR, ""},
		{token.RBRACE, ""},
	}

	checkInput(t, input, tests)
}

func TestKeywords(t *testing.T) {
	input := "func return import export module if for while forever _if2"
	tests := []Test{
		{token.KEYWORD, "func"},
		{token.KEYWORD, "return"},
		{token.KEYWORD, "import"},
		{token.KEYWORD, "export"},
		{token.KEYWORD, "module"},
		{token.KEYWORD, "if"},
		{token.KEYWORD, "for"},
		{token.KEYWORD, "while"},
		{token.IDENT, "forever"},
		{token.IDENT, "_if2"},
	}
	checkInput(t, input, tests)
}

func TestPositions(t *testing.T) {
	toks, err := Tokenize("func\n  main ()\n\t{}")
	require.NoError(t, err)

	expected := []token.Position{
		{Line: 1, Column: 1},
		{Line: 2, Column: 3},
		{Line: 2, Column: 8},
		{Line: 2, Column: 9},
		{Line: 3, Column: 2},
		{Line: 3, Column: 3},
	}
	require.Len(t, toks, len(expected))
	for i, pos := range expected {
		assert.Equal(t, pos, toks[i].Pos, "token %d (%s)", i, toks[i])
	}
}

func TestEmptyInput(t *testing.T) {
	toks, err := Tokenize(" \n\t ")
	require.NoError(t, err)
	assert.Empty(t, toks)
}

func TestUnexpectedCharacter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		char  string
		pos   token.Position
	}{
		{"at sign", "func @", "@", token.Position{Line: 1, Column: 6}},
		{"hash on second line", "i32 x;\n#", "#", token.Position{Line: 2, Column: 1}},
		{"ampersand", "a & b", "&", token.Position{Line: 1, Column: 3}},
		{"quote", `"str"`, `"`, token.Position{Line: 1, Column: 1}},
		{"nul byte", "return 0;\x00 @", "\x00", token.Position{Line: 1, Column: 10}},
		{"leading nul", "\x00", "\x00", token.Position{Line: 1, Column: 1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			toks, err := Tokenize(tc.input)
			require.Error(t, err)
			assert.Nil(t, toks)

			var ce *token.CompileError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, token.LexPhase, ce.Phase)
			assert.Equal(t, tc.char, ce.Token.Literal)
			assert.Equal(t, tc.pos, ce.Token.Pos)
			assert.Contains(t, err.Error(), "unexpected character")
		})
	}
}
