package casebook

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const fence = "```"

func TestExtract(t *testing.T) {
	markdown := `# Returns

Some prose that is ignored.

## Test: constant
` + fence + `cep
func main() -> i32 { return 3; }
` + fence + `
` + fence + `ast
(module (func main i32 (scope (return 3))))
` + fence + `
` + fence + `asm
  mov rax, 3
` + fence + `

## Test: no frame
` + fence + `cep
func main() -> i32 {}
` + fence + `
` + fence + `asm-absent
rsp + 32
` + fence + `
`

	cases, err := Extract([]byte(markdown))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 2)

	c := cases[0]
	be.Equal(t, c.Name, "constant")
	be.Equal(t, c.Source, "func main() -> i32 { return 3; }")
	be.Equal(t, c.Line, 5)
	be.Equal(t, len(c.Assertions), 2)
	be.Equal(t, c.Assertions[0].Kind, KindAST)
	be.Equal(t, c.Assertions[0].Content, "(module (func main i32 (scope (return 3))))")
	be.Equal(t, c.Assertions[1].Kind, KindAsm)
	be.Equal(t, c.Assertions[1].Content, "  mov rax, 3")
	be.Equal(t, len(c.Expect(KindAsm)), 1)
	be.Equal(t, len(c.Expect(KindIR)), 0)

	be.Equal(t, cases[1].Name, "no frame")
	be.Equal(t, cases[1].Assertions[0].Kind, KindAsmAbsent)
}

func TestExtractMultilineSource(t *testing.T) {
	markdown := "## Test: lines\n" + fence + "cep\nfunc main() -> i32 {\n  return 0;\n}\n" + fence + "\n" +
		fence + "ir\nfunc main() -> i32\n  return 0\n" + fence + "\n"

	cases, err := Extract([]byte(markdown))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 1)
	be.Equal(t, cases[0].Source, "func main() -> i32 {\n  return 0;\n}")
	be.Equal(t, cases[0].Assertions[0].Content, "func main() -> i32\n  return 0")
}

func TestExtractPlainBlocksOutsideCases(t *testing.T) {
	markdown := "# Notes\n" + fence + "\nnot a case\n" + fence + "\n"
	cases, err := Extract([]byte(markdown))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 0)
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		msg      string
	}{
		{
			"fence outside case",
			fence + "cep\nfunc main() -> i32 {}\n" + fence + "\n",
			"outside of a test case",
		},
		{
			"missing source",
			"## Test: empty\n" + fence + "asm\nret\n" + fence + "\n",
			"has no cep fence",
		},
		{
			"missing assertions",
			"## Test: bare\n" + fence + "cep\nfunc main() -> i32 {}\n" + fence + "\n",
			"has no assertions",
		},
		{
			"two sources",
			"## Test: twice\n" + fence + "cep\na\n" + fence + "\n" + fence + "cep\nb\n" + fence + "\n",
			"multiple cep fences",
		},
		{
			"unknown language",
			"## Test: odd\n" + fence + "cep\na\n" + fence + "\n" + fence + "wasm\nx\n" + fence + "\n",
			`unknown fence language "wasm"`,
		},
		{
			"mixed error and output",
			"## Test: mixed\n" + fence + "cep\na\n" + fence + "\n" + fence + "compile-error\nx\n" + fence + "\n" +
				fence + "asm\ny\n" + fence + "\n",
			"mixes compile-error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract([]byte(tt.markdown))
			be.True(t, err != nil)
			be.True(t, strings.Contains(err.Error(), tt.msg))
		})
	}
}
