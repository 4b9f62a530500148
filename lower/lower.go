package lower

import (
	"fmt"

	"github.com/thiremani/cepheid/ast"
	"github.com/thiremani/cepheid/token"
	"github.com/thiremani/cepheid/types"
)

// Lower flattens every function of module into labels, jumps and three
// address instructions, then splits each into basic blocks. Nested
// functions follow their parent.
func Lower(module *ast.Module) (*Program, error) {
	prog := &Program{}
	seen := map[string]bool{}
	for _, fn := range module.Functions {
		fns, err := lowerFunction(fn, seen)
		if err != nil {
			return nil, err
		}
		prog.Functions = append(prog.Functions, fns...)
	}
	return prog, nil
}

func lowerError(tok token.Token, format string, args ...any) error {
	return &token.CompileError{
		Phase: token.LowerPhase,
		Token: tok,
		Msg:   fmt.Sprintf(format, args...),
	}
}

type lowerer struct {
	fn     *Function
	scopes []map[string]*Var
	names  map[string]int // declarations per source name, for unique IR names
	labels int
	nested []*ast.Function
}

func lowerFunction(node *ast.Function, seen map[string]bool) ([]*Function, error) {
	if seen[node.Name] {
		return nil, lowerError(node.Token, "function %s redeclared", node.Name)
	}
	seen[node.Name] = true
	if len(node.Params) > 0 {
		return nil, lowerError(node.Params[0].Name.Token, "function parameters are not supported")
	}
	ret, ok := types.Primitive(node.ReturnType.Value)
	if !ok {
		return nil, lowerError(node.ReturnType.Token, "unknown type %s", node.ReturnType.Value)
	}

	l := &lowerer{
		fn:    &Function{Name: node.Name, ReturnType: ret},
		names: map[string]int{},
	}
	if err := l.scope(node.Body); err != nil {
		return nil, err
	}
	l.fn.Blocks = BuildBlocks(l.fn.Instrs)

	fns := []*Function{l.fn}
	for _, n := range l.nested {
		more, err := lowerFunction(n, seen)
		if err != nil {
			return nil, err
		}
		fns = append(fns, more...)
	}
	return fns, nil
}

func (l *lowerer) emit(in Instruction) {
	l.fn.Instrs = append(l.fn.Instrs, in)
}

func (l *lowerer) temp(t types.Type) *Temp {
	tmp := &Temp{N: l.fn.Temps, Typ: t}
	l.fn.Temps++
	return tmp
}

func (l *lowerer) label() int {
	n := l.labels
	l.labels++
	return n
}

func (l *lowerer) lookup(ident *ast.Identifier) (*Var, error) {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		if v, ok := l.scopes[i][ident.Value]; ok {
			return v, nil
		}
	}
	return nil, lowerError(ident.Token, "unknown identifier %s", ident.Value)
}

func (l *lowerer) declare(d *ast.VariableDeclaration) (*Var, error) {
	t, ok := types.Primitive(d.Type.Value)
	if !ok {
		return nil, lowerError(d.Type.Token, "unknown type %s", d.Type.Value)
	}
	name := d.Name.Value
	top := l.scopes[len(l.scopes)-1]
	if _, ok := top[name]; ok {
		return nil, lowerError(d.Name.Token, "variable %s redeclared in this scope", name)
	}

	irName := name
	if n := l.names[name]; n > 0 {
		irName = fmt.Sprintf("%s.%d", name, n)
	}
	l.names[name]++

	v := &Var{Name: irName, Typ: t, Token: d.Name.Token}
	top[name] = v
	l.fn.Vars = append(l.fn.Vars, v)
	return v, nil
}

func (l *lowerer) scope(s *ast.Scope) error {
	l.scopes = append(l.scopes, map[string]*Var{})
	for _, stmt := range s.Statements {
		if err := l.statement(stmt); err != nil {
			return err
		}
	}
	l.scopes = l.scopes[:len(l.scopes)-1]
	return nil
}

func (l *lowerer) statement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		var src Value
		if s.Value != nil {
			var err error
			if src, err = l.expression(s.Value); err != nil {
				return err
			}
		}
		v, err := l.declare(s)
		if err != nil {
			return err
		}
		if src != nil {
			l.emit(&Copy{Token: s.Name.Token, Dst: v, Src: src})
		}
		return nil
	case *ast.ReturnStatement:
		ret := &Return{Token: s.Token}
		if s.Value != nil {
			v, err := l.expression(s.Value)
			if err != nil {
				return err
			}
			ret.Value = v
		}
		l.emit(ret)
		return nil
	case *ast.Conditional:
		return l.conditional(s)
	case *ast.Loop:
		return l.loop(s)
	case *ast.Scope:
		return l.scope(s)
	case *ast.ExpressionStatement:
		_, err := l.expression(s.Expression)
		return err
	case *ast.Function:
		l.nested = append(l.nested, s)
		return nil
	}
	return lowerError(stmt.Tok(), "unexpected %T in statement position", stmt)
}

func (l *lowerer) conditional(c *ast.Conditional) error {
	cond, err := l.expression(c.Condition)
	if err != nil {
		return err
	}
	label := fmt.Sprintf(".L%d", l.label())
	l.emit(&Jump{Token: c.Token, Target: label, When: IfFalse, Cond: cond})
	if err := l.scope(c.Body); err != nil {
		return err
	}
	l.emit(&Label{Name: label})
	return nil
}

// loop tests the condition at the bottom so each iteration takes one jump.
func (l *lowerer) loop(lp *ast.Loop) error {
	if lp.Init != nil {
		if _, err := l.expression(lp.Init); err != nil {
			return err
		}
	}

	n := l.label()
	start := fmt.Sprintf(".L%d_start", n)
	check := fmt.Sprintf(".L%d_cond", n)

	l.emit(&Jump{Token: lp.Token, Target: check, When: Always})
	l.emit(&Label{Name: start})
	if err := l.scope(lp.Body); err != nil {
		return err
	}
	if lp.Update != nil {
		if _, err := l.expression(lp.Update); err != nil {
			return err
		}
	}
	l.emit(&Label{Name: check})
	cond, err := l.expression(lp.Condition)
	if err != nil {
		return err
	}
	l.emit(&Jump{Token: lp.Token, Target: start, When: IfTrue, Cond: cond})
	return nil
}

func (l *lowerer) expression(exp ast.Expression) (Value, error) {
	switch e := exp.(type) {
	case *ast.IntegerLiteral:
		t := types.I32
		if !types.I32.FitsSigned(e.Value) {
			t = types.I64
		}
		return &Literal{Typ: t, Value: e.Value}, nil
	case *ast.Identifier:
		return l.lookup(e)
	case *ast.BinaryOperation:
		return l.binary(e)
	case *ast.UnaryOperation:
		return l.unary(e)
	}
	return nil, lowerError(exp.Tok(), "unexpected %T in expression position", exp)
}

func (l *lowerer) binary(e *ast.BinaryOperation) (Value, error) {
	if e.Op == ast.Assign {
		ident, ok := e.Left.(*ast.Identifier)
		if !ok {
			return nil, lowerError(e.Left.Tok(), "cannot assign to %s", e.Left)
		}
		dst, err := l.lookup(ident)
		if err != nil {
			return nil, err
		}
		rhs, err := l.expression(e.Right)
		if err != nil {
			return nil, err
		}
		l.emit(&BinaryOp{Token: e.Token, Op: e.Op, Result: dst, Lhs: dst, Rhs: rhs})
		return dst, nil
	}

	lhs, err := l.expression(e.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := l.expression(e.Right)
	if err != nil {
		return nil, err
	}
	result := l.temp(wider(lhs.Type(), rhs.Type()))
	l.emit(&BinaryOp{Token: e.Token, Op: e.Op, Result: result, Lhs: lhs, Rhs: rhs})
	return result, nil
}

func (l *lowerer) unary(e *ast.UnaryOperation) (Value, error) {
	operand, err := l.expression(e.Operand)
	if err != nil {
		return nil, err
	}

	var result Value
	if v, ok := operand.(*Var); ok && (e.Op == ast.Increment || e.Op == ast.Decrement) {
		result = v
	} else {
		result = l.temp(operand.Type())
	}
	l.emit(&UnaryOp{Token: e.Token, Op: e.Op, Result: result, Operand: operand})
	return result, nil
}

func wider(a, b types.Type) types.Type {
	if b.Size() > a.Size() {
		return b
	}
	return a
}
