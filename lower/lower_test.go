package lower

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thiremani/cepheid/lexer"
	"github.com/thiremani/cepheid/parser"
	"github.com/thiremani/cepheid/token"
)

func mustLower(t *testing.T, src string) *Program {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	require.NoError(t, err)
	module, err := parser.Parse(toks)
	require.NoError(t, err)
	prog, err := Lower(module)
	require.NoError(t, err)
	return prog
}

func TestLowerConditional(t *testing.T) {
	prog := mustLower(t, "func main() -> i32 { i32 x = 5; if (x > 3) { return 1; } return 0; }")
	require.Len(t, prog.Functions, 1)
	fn := prog.Functions[0]

	expected := `func main() -> i32
  x = 5
  t0 = x > 3
  jump .L0 unless t0
  return 1
.L0:
  return 0
`
	assert.Equal(t, expected, fn.String())
	assert.Equal(t, 1, fn.Temps)
	require.Len(t, fn.Vars, 1)
	assert.Equal(t, "i32", fn.Vars[0].Type().String())

	require.Len(t, fn.Blocks, 3)
	assert.Len(t, fn.Blocks[0].Instrs, 3)
	assert.Equal(t, "", fn.Blocks[1].Label)
	assert.Equal(t, ".L0", fn.Blocks[2].Label)
}

func TestLowerLoop(t *testing.T) {
	prog := mustLower(t, "func f() -> i64 { i64 s = 0; i64 i; for (i = 0; i < 3; ++i) { s = s + i; } return s; }")
	fn := prog.Functions[0]

	expected := `func f() -> i64
  s = 0
  i = 0
  jump .L0_cond
.L0_start:
  t0 = s + i
  s = t0
  i = ++i
.L0_cond:
  t1 = i < 3
  jump .L0_start if t1
  return s
`
	assert.Equal(t, expected, fn.String())

	require.Len(t, fn.Blocks, 4)
	assert.Equal(t, ".L0_start", fn.Blocks[1].Label)
	assert.Equal(t, ".L0_cond", fn.Blocks[2].Label)
	assert.Len(t, fn.Blocks[3].Instrs, 1)
	assert.Empty(t, Analyze(fn))
}

func TestLowerWhile(t *testing.T) {
	prog := mustLower(t, "func f() -> i32 { i32 n = 3; while (n) { n = n - 1; } return n; }")
	assert.Equal(t, `func f() -> i32
  n = 3
  jump .L0_cond
.L0_start:
  t0 = n - 1
  n = t0
.L0_cond:
  jump .L0_start if n
  return n
`, prog.Functions[0].String())
}

func TestLowerShadowing(t *testing.T) {
	prog := mustLower(t, "func f() -> i32 { i32 x = 1; { i16 x = x + 1; } { i8 x; } return -x; }")
	fn := prog.Functions[0]
	assert.Equal(t, `func f() -> i32
  x = 1
  t0 = x + 1
  x.1 = t0
  t1 = -x
  return t1
`, fn.String())
	require.Len(t, fn.Vars, 3)
	assert.Equal(t, "x.2", fn.Vars[2].Name)
}

func TestLowerLiteralTypes(t *testing.T) {
	prog := mustLower(t, "func f() -> i64 { i8 a = 1; return a * 5000000000; }")
	fn := prog.Functions[0]
	op, ok := fn.Instrs[1].(*BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "i64", op.Rhs.Type().String())
	assert.Equal(t, "i64", op.Result.Type().String())
}

func TestLowerNestedFunctions(t *testing.T) {
	prog := mustLower(t, "func main() -> i32 { func inner() -> i8 { return 1; } return 0; } func last() -> i32 { return 2; }")
	require.Len(t, prog.Functions, 3)
	assert.Equal(t, "main", prog.Functions[0].Name)
	assert.Equal(t, "inner", prog.Functions[1].Name)
	assert.Equal(t, "last", prog.Functions[2].Name)
	assert.Contains(t, prog.String(), "func inner() -> i8\n  return 1\n")
}

func TestLowerErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"unknown identifier", "func f() -> i32 { return y; }", "unknown identifier y"},
		{"redeclared", "func f() -> i32 { i32 a; i8 a; }", "variable a redeclared"},
		{"unknown type", "func f() -> i32 { u8 a; }", "unknown type u8"},
		{"unknown return type", "func f() -> str {}", "unknown type str"},
		{"parameters", "func f(i32 a) -> i32 {}", "parameters are not supported"},
		{"assign literal", "func f() -> i32 { 1 = 2; }", "cannot assign to 1"},
		{"duplicate function", "func f() -> i32 {} func f() -> i32 {}", "function f redeclared"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := lexer.Tokenize(tt.src)
			require.NoError(t, err)
			module, err := parser.Parse(toks)
			require.NoError(t, err)

			prog, err := Lower(module)
			require.Error(t, err)
			assert.Nil(t, prog)

			var ce *token.CompileError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, token.LowerPhase, ce.Phase)
			assert.Contains(t, ce.Msg, tt.msg)
		})
	}
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		names []string
	}{
		{"initialised", "i32 x = 1; return x;", nil},
		{"assigned later", "i32 x; x = 2; return x;", nil},
		{"never assigned", "i32 x; return x + 1;", []string{"x"}},
		{"reported once", "i32 x; i32 y = x; return x;", []string{"x"}},
		{"assigned in branch", "i32 x; if (1) { x = 1; } return x;", nil},
		{"read as condition", "i32 x; if (x) {}", []string{"x"}},
		{"loop body precedes condition", "i32 x; while (x) { x = 0; }", nil},
		{"increment", "i32 x; ++x;", []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := mustLower(t, "func f() -> i32 { "+tt.src+" }")
			errs := Analyze(prog.Functions[0])
			require.Len(t, errs, len(tt.names))
			for i, name := range tt.names {
				assert.Contains(t, errs[i].Msg, `"`+name+`"`)
				assert.Equal(t, token.LowerPhase, errs[i].Phase)
			}
		})
	}
}

func TestBuildBlocks(t *testing.T) {
	ret := &Return{}
	instrs := []Instruction{
		&Label{Name: ".a"},
		&Label{Name: ".b"},
		&Jump{Target: ".a", When: Always},
		ret,
		ret,
	}
	blocks := BuildBlocks(instrs)
	require.Len(t, blocks, 4)
	assert.Equal(t, ".a", blocks[0].Label)
	assert.Len(t, blocks[0].Instrs, 1)
	assert.Equal(t, ".b", blocks[1].Label)
	assert.Len(t, blocks[1].Instrs, 2)
	assert.Equal(t, "", blocks[2].Label)
	assert.Len(t, blocks[3].Instrs, 1)

	assert.Empty(t, BuildBlocks(nil))
}
