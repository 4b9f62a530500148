package compiler

import (
	"maps"

	"github.com/thiremani/cepheid/ast"
	"github.com/thiremani/cepheid/types"
)

type ScopeKind int

const (
	FuncScope ScopeKind = iota
	BlockScope
)

type Scope[T any] struct {
	Elems     map[string]T
	ScopeKind ScopeKind
}

func NewScope[T any](sk ScopeKind) Scope[T] {
	return Scope[T]{
		Elems:     make(map[string]T),
		ScopeKind: sk,
	}
}

func PushScope[T any](scopes *[]Scope[T], sk ScopeKind) {
	*scopes = append(*scopes, NewScope[T](sk))
}

func PopScope[T any](scopes *[]Scope[T]) {
	if len(*scopes) == 0 {
		panic("cannot pop empty scope stack")
	}
	*scopes = (*scopes)[:len(*scopes)-1]
}

// Put does not need a pointer, as it modifies the map within a scope, not the slice itself.
func Put[T any](scopes []Scope[T], name string, elem T) {
	scopes[len(scopes)-1].Elems[name] = elem
}

func PutBulk[T any](scopes []Scope[T], elems map[string]T) {
	maps.Copy(scopes[len(scopes)-1].Elems, elems)
}

func Get[T any](scopes []Scope[T], name string) (T, bool) {
	// Search from innermost scope outward
	// if in func we only search until func scope
	for i := len(scopes) - 1; i >= 0; i-- {
		if e, ok := scopes[i].Elems[name]; ok {
			return e, true
		}
		if scopes[i].ScopeKind == FuncScope {
			break
		}
	}

	var zero T
	return zero, false
}

// Frame tracks stack placement for one scope. Offsets are relative to the
// first byte above the shadow space.
type Frame struct {
	Base   int
	Cursor int // end of the last variable placed in this frame
}

// Context is the generator's view of the scopes enclosing the current
// statement. Push appends a frame, Pop truncates.
type Context struct {
	Vars   []Scope[Variable]
	Types  []Scope[types.Type]
	frames []Frame
	peak   int
	labels int
}

func NewContext() *Context {
	return &Context{}
}

var primitiveTypes = func() map[string]types.Type {
	m := map[string]types.Type{}
	for _, name := range types.ReservedTypeNames() {
		t, _ := types.Primitive(name)
		m[name] = t
	}
	return m
}()

// PushFunction opens a function frame starting at offset 0.
func (c *Context) PushFunction() {
	PushScope(&c.Vars, FuncScope)
	PushScope(&c.Types, FuncScope)
	PutBulk(c.Types, primitiveTypes)
	c.frames = append(c.frames, Frame{})
	c.peak = 0
}

// PushBlock opens a frame that starts where its parent's variables end.
func (c *Context) PushBlock() {
	PushScope(&c.Vars, BlockScope)
	PushScope(&c.Types, BlockScope)
	base := types.AlignUp(c.top().Cursor, 8)
	c.frames = append(c.frames, Frame{Base: base, Cursor: base})
}

// Pop closes the innermost frame. Closing a function frame resets the
// local label counter.
func (c *Context) Pop() {
	kind := c.Vars[len(c.Vars)-1].ScopeKind
	PopScope(&c.Vars)
	PopScope(&c.Types)
	c.frames = c.frames[:len(c.frames)-1]
	if kind == FuncScope {
		c.labels = 0
	}
}

func (c *Context) Depth() int {
	return len(c.frames)
}

func (c *Context) top() *Frame {
	return &c.frames[len(c.frames)-1]
}

// Declare places decl in the innermost frame at the next offset aligned
// for its type.
func (c *Context) Declare(decl *ast.VariableDeclaration) (Variable, error) {
	typ, err := c.ResolveType(decl.Type)
	if err != nil {
		return Variable{}, err
	}
	name := decl.Name.Value
	if _, ok := c.Vars[len(c.Vars)-1].Elems[name]; ok {
		return Variable{}, genError(decl.Name.Token, nil, "variable %s redeclared in this scope", name)
	}

	f := c.top()
	offset := types.AlignUp(f.Cursor, typ.Align())
	f.Cursor = offset + typ.Size()
	c.peak = max(c.peak, f.Cursor)

	v := Variable{Name: name, Type: typ, Offset: offset}
	Put(c.Vars, name, v)
	return v, nil
}

func (c *Context) Lookup(ident *ast.Identifier) (Variable, error) {
	v, ok := Get(c.Vars, ident.Value)
	if !ok {
		return Variable{}, genError(ident.Token, ErrUnresolved, "unknown identifier %s", ident.Value)
	}
	return v, nil
}

func (c *Context) ResolveType(typeName *ast.Identifier) (types.Type, error) {
	t, ok := Get(c.Types, typeName.Value)
	if !ok {
		return nil, genError(typeName.Token, ErrUnresolved, "unknown type %s", typeName.Value)
	}
	return t, nil
}

// TypeLayout makes Context an ast.Layout.
func (c *Context) TypeLayout(typeName *ast.Identifier) (int, int, error) {
	t, err := c.ResolveType(typeName)
	if err != nil {
		return 0, 0, err
	}
	return t.Size(), t.Align(), nil
}

// Peak is the highest offset used by any variable of the current function.
func (c *Context) Peak() int {
	return c.peak
}

// NewLabel returns a local label number unique within the current function.
func (c *Context) NewLabel() int {
	n := c.labels
	c.labels++
	return n
}
