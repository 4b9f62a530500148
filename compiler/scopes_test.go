package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thiremani/cepheid/ast"
	"github.com/thiremani/cepheid/token"
)

func ident(name string) *ast.Identifier {
	return &ast.Identifier{Token: token.Token{Type: token.IDENT, Literal: name}, Value: name}
}

func declare(t *testing.T, c *Context, typ, name string) Variable {
	t.Helper()
	v, err := c.Declare(&ast.VariableDeclaration{Type: ident(typ), Name: ident(name)})
	require.NoError(t, err)
	return v
}

func TestScopeLookup(t *testing.T) {
	scopes := []Scope[int]{}
	PushScope(&scopes, FuncScope)
	Put(scopes, "a", 1)
	PushScope(&scopes, BlockScope)
	Put(scopes, "b", 2)

	v, ok := Get(scopes, "a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	PushScope(&scopes, FuncScope)
	_, ok = Get(scopes, "a")
	assert.False(t, ok, "lookup stops at the function boundary")

	PopScope(&scopes)
	PopScope(&scopes)
	_, ok = Get(scopes, "b")
	assert.False(t, ok)
}

func TestContextPlacement(t *testing.T) {
	c := NewContext()
	c.PushFunction()

	assert.Equal(t, 0, declare(t, c, "i8", "a").Offset)
	assert.Equal(t, 4, declare(t, c, "i32", "b").Offset)
	assert.Equal(t, 8, declare(t, c, "i16", "c").Offset)

	c.PushBlock()
	inner := declare(t, c, "i8", "d")
	assert.Equal(t, 16, inner.Offset, "block starts at the parent cursor rounded to 8")
	assert.Equal(t, MemoryLocation{Address: "rsp + 48", Size: 1}, inner.Location())
	c.Pop()

	c.PushBlock()
	assert.Equal(t, 16, declare(t, c, "i64", "e").Offset, "sibling reuses the slot")
	c.Pop()

	assert.Equal(t, 24, c.Peak())
	c.Pop()
	assert.Equal(t, 0, c.Depth())
}

func TestContextShadowing(t *testing.T) {
	c := NewContext()
	c.PushFunction()
	declare(t, c, "i32", "x")
	c.PushBlock()
	inner := declare(t, c, "i64", "x")

	v, err := c.Lookup(ident("x"))
	require.NoError(t, err)
	assert.Equal(t, inner, v)

	c.Pop()
	v, err = c.Lookup(ident("x"))
	require.NoError(t, err)
	assert.Equal(t, 4, v.Type.Size())

	_, err = c.Declare(&ast.VariableDeclaration{Type: ident("i8"), Name: ident("x")})
	assert.Error(t, err)
}

func TestContextTypes(t *testing.T) {
	c := NewContext()
	c.PushFunction()

	size, align, err := c.TypeLayout(ident("i16"))
	require.NoError(t, err)
	assert.Equal(t, 2, size)
	assert.Equal(t, 2, align)

	c.PushBlock()
	_, err = c.ResolveType(ident("i64"))
	assert.NoError(t, err, "primitives resolve from nested frames")

	_, err = c.ResolveType(ident("f64"))
	assert.True(t, errors.Is(err, ErrUnresolved))
}

func TestContextLabels(t *testing.T) {
	c := NewContext()
	c.PushFunction()
	assert.Equal(t, 0, c.NewLabel())
	c.PushBlock()
	assert.Equal(t, 1, c.NewLabel())
	c.Pop()
	assert.Equal(t, 2, c.NewLabel())
	c.Pop()

	c.PushFunction()
	assert.Equal(t, 0, c.NewLabel())
}

func TestLabelNames(t *testing.T) {
	assert.Equal(t, "cep_main", funcLabel("main"))
	assert.Equal(t, ".L3", localLabel(3))
	cond, end := loopLabels(2)
	assert.Equal(t, ".L2_cond", cond)
	assert.Equal(t, ".L2_end", end)
}
