package compiler

import "github.com/thiremani/cepheid/ast"

// Condition is the relation a cmp instruction left in the flags.
type Condition int

const (
	Less Condition = iota
	LessEqual
	Equal
	NotEqual
	Greater
	GreaterEqual
)

// condInstrs holds, per condition, the setcc that materialises it, the jump
// taken when it holds and the jump taken when it does not.
var condInstrs = [...]struct {
	set, jump, inverse string
}{
	Less:         {"setl", "jl", "jnl"},
	LessEqual:    {"setle", "jle", "jnle"},
	Equal:        {"sete", "je", "jne"},
	NotEqual:     {"setne", "jne", "je"},
	Greater:      {"setg", "jg", "jng"},
	GreaterEqual: {"setge", "jge", "jnge"},
}

func (c Condition) Set() string         { return condInstrs[c].set }
func (c Condition) Jump() string        { return condInstrs[c].jump }
func (c Condition) InverseJump() string { return condInstrs[c].inverse }

var comparisonOps = map[ast.BinaryOp]Condition{
	ast.LessThan:     Less,
	ast.LessEqual:    LessEqual,
	ast.Equal:        Equal,
	ast.NotEqual:     NotEqual,
	ast.GreaterThan:  Greater,
	ast.GreaterEqual: GreaterEqual,
}

// arithmeticOps are two-operand instructions of the form "op dst, src".
var arithmeticOps = map[ast.BinaryOp]string{
	ast.Add:      "add",
	ast.Subtract: "sub",
	ast.Multiply: "imul",
}

var unaryOps = map[ast.UnaryOp]string{
	ast.Negate:    "neg",
	ast.Not:       "not",
	ast.Decrement: "dec",
	ast.Increment: "inc",
}

func (g *Generator) genBinaryOperation(e *ast.BinaryOperation) (Location, error) {
	switch {
	case e.Op == ast.Assign:
		return g.genAssign(e)
	case e.Op.IsComparison():
		return g.genComparison(e)
	}

	mnemonic, ok := arithmeticOps[e.Op]
	if !ok {
		return nil, genError(e.Token, ErrUnsupportedOperation, "operator %s is not supported", e.Op)
	}

	left, right, err := g.genOperands(e)
	if err != nil {
		return nil, err
	}
	defer release(right)

	dst, err := g.materialize(left, e.Left.Tok())
	if err != nil {
		return nil, err
	}
	src, err := g.sourceOperand(right, e.Right.Tok())
	if err != nil {
		dst.Release()
		return nil, err
	}
	defer release(src)

	g.instr(mnemonic, dst.Name(8), operand(src))
	return RegisterLocation{dst}, nil
}

// genOperands generates both sides in order. A comparison on the left is
// materialised first since generating the right side may clobber the flags.
func (g *Generator) genOperands(e *ast.BinaryOperation) (Location, Location, error) {
	left, err := g.genExpression(e.Left)
	if err != nil {
		return nil, nil, err
	}
	if cmp, ok := left.(ComparisonLocation); ok {
		reg, err := g.materialize(cmp, e.Left.Tok())
		if err != nil {
			return nil, nil, err
		}
		left = RegisterLocation{reg}
	}

	right, err := g.genExpression(e.Right)
	if err != nil {
		release(left)
		return nil, nil, err
	}
	return left, right, nil
}

func (g *Generator) genAssign(e *ast.BinaryOperation) (Location, error) {
	ident, ok := e.Left.(*ast.Identifier)
	if !ok {
		return nil, genError(e.Left.Tok(), ErrUnsupportedOperation, "cannot assign to %s", e.Left)
	}
	v, err := g.ctx.Lookup(ident)
	if err != nil {
		return nil, err
	}

	value, err := g.genExpression(e.Right)
	if err != nil {
		return nil, err
	}
	defer release(value)

	dst := v.Location()
	if err := g.store(dst, value, e.Right.Tok()); err != nil {
		return nil, err
	}
	return dst, nil
}

func (g *Generator) genUnaryOperation(e *ast.UnaryOperation) (Location, error) {
	mnemonic := unaryOps[e.Op]

	// ++x and --x on a variable update it in place
	if e.Op == ast.Increment || e.Op == ast.Decrement {
		if ident, ok := e.Operand.(*ast.Identifier); ok {
			v, err := g.ctx.Lookup(ident)
			if err != nil {
				return nil, err
			}
			dst := v.Location()
			g.instr(mnemonic, dst.Operand())
			return dst, nil
		}
	}

	loc, err := g.genExpression(e.Operand)
	if err != nil {
		return nil, err
	}
	reg, err := g.materialize(loc, e.Operand.Tok())
	if err != nil {
		return nil, err
	}
	g.instr(mnemonic, reg.Name(8))
	return RegisterLocation{reg}, nil
}
