package compiler

import (
	"github.com/thiremani/cepheid/ast"
	"github.com/thiremani/cepheid/lexer"
	"github.com/thiremani/cepheid/parser"
)

// Compile translates cepheid source into NASM assembly text. It fails with
// the first error of whichever stage meets one, as a *token.CompileError.
func Compile(src string) (string, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return "", err
	}
	module, err := parser.Parse(toks)
	if err != nil {
		return "", err
	}
	return Generate(module)
}

// Generate emits assembly for an already parsed module.
func Generate(module *ast.Module) (string, error) {
	return NewGenerator().Generate(module)
}
