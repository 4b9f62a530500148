package lower

import (
	"fmt"
	"strings"

	"github.com/thiremani/cepheid/ast"
	"github.com/thiremani/cepheid/token"
	"github.com/thiremani/cepheid/types"
)

// Value is an operand of an instruction.
type Value interface {
	String() string
	Type() types.Type
	value()
}

type Literal struct {
	Typ   types.Type
	Value int64
}

func (l *Literal) value()           {}
func (l *Literal) Type() types.Type { return l.Typ }
func (l *Literal) String() string   { return fmt.Sprint(l.Value) }

// Var is a declared variable. Name is unique within its function; a shadowing
// declaration gets a numeric suffix.
type Var struct {
	Name  string
	Typ   types.Type
	Token token.Token // the declaring name
}

func (v *Var) value()           {}
func (v *Var) Type() types.Type { return v.Typ }
func (v *Var) String() string   { return v.Name }

// Temp holds an intermediate result.
type Temp struct {
	N   int
	Typ types.Type
}

func (t *Temp) value()           {}
func (t *Temp) Type() types.Type { return t.Typ }
func (t *Temp) String() string   { return fmt.Sprintf("t%d", t.N) }

type Instruction interface {
	String() string
	instruction()
}

type Label struct {
	Name string
}

type JumpIf int

const (
	Always JumpIf = iota
	IfTrue
	IfFalse
)

type Jump struct {
	Token  token.Token
	Target string
	When   JumpIf
	Cond   Value // nil when When is Always
}

type BinaryOp struct {
	Token  token.Token
	Op     ast.BinaryOp
	Result Value
	Lhs    Value
	Rhs    Value
}

type UnaryOp struct {
	Token   token.Token
	Op      ast.UnaryOp
	Result  Value
	Operand Value
}

// Copy initialises a declared variable.
type Copy struct {
	Token token.Token
	Dst   *Var
	Src   Value
}

type Return struct {
	Token token.Token
	Value Value // nil for a bare return
}

func (*Label) instruction()    {}
func (*Jump) instruction()     {}
func (*BinaryOp) instruction() {}
func (*UnaryOp) instruction()  {}
func (*Copy) instruction()     {}
func (*Return) instruction()   {}

func (l *Label) String() string { return l.Name + ":" }

func (j *Jump) String() string {
	switch j.When {
	case IfTrue:
		return fmt.Sprintf("jump %s if %s", j.Target, j.Cond)
	case IfFalse:
		return fmt.Sprintf("jump %s unless %s", j.Target, j.Cond)
	}
	return "jump " + j.Target
}

func (b *BinaryOp) String() string {
	if b.Op == ast.Assign {
		return fmt.Sprintf("%s = %s", b.Result, b.Rhs)
	}
	return fmt.Sprintf("%s = %s %s %s", b.Result, b.Lhs, b.Op, b.Rhs)
}

func (u *UnaryOp) String() string {
	return fmt.Sprintf("%s = %s%s", u.Result, u.Op, u.Operand)
}

func (c *Copy) String() string {
	return fmt.Sprintf("%s = %s", c.Dst, c.Src)
}

func (r *Return) String() string {
	if r.Value == nil {
		return "return"
	}
	return "return " + r.Value.String()
}

type Function struct {
	Name       string
	ReturnType types.Type
	Vars       []*Var
	Temps      int
	Instrs     []Instruction
	Blocks     []*BasicBlock
}

func (f *Function) String() string {
	var out strings.Builder
	fmt.Fprintf(&out, "func %s() -> %s\n", f.Name, f.ReturnType)
	for _, in := range f.Instrs {
		if _, ok := in.(*Label); ok {
			fmt.Fprintf(&out, "%s\n", in)
			continue
		}
		fmt.Fprintf(&out, "  %s\n", in)
	}
	return out.String()
}

type Program struct {
	Functions []*Function
}

func (p *Program) String() string {
	parts := make([]string, 0, len(p.Functions))
	for _, f := range p.Functions {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, "\n")
}
