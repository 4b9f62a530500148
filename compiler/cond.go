package compiler

import "github.com/thiremani/cepheid/ast"

// genComparison emits a cmp and leaves the result in the flags. The caller
// either branches on it or materialises it.
func (g *Generator) genComparison(e *ast.BinaryOperation) (Location, error) {
	cond := comparisonOps[e.Op]

	left, right, err := g.genOperands(e)
	if err != nil {
		return nil, err
	}
	defer release(left)
	defer release(right)

	// cmp can take the slot itself when the other side needs no widening
	if m, ok := left.(MemoryLocation); ok {
		switch r := right.(type) {
		case ImmediateLocation:
			if fitsCompare(r.Value, m.Size) {
				g.instr("cmp", m.Operand(), r.Operand())
				return ComparisonLocation{cond}, nil
			}
		case RegisterLocation:
			if m.Size == 8 {
				g.instr("cmp", m.Operand(), r.Reg.Name(8))
				return ComparisonLocation{cond}, nil
			}
		}
	}

	lreg, err := g.materialize(left, e.Left.Tok())
	if err != nil {
		return nil, err
	}
	defer lreg.Release()

	src, err := g.sourceOperand(right, e.Right.Tok())
	if err != nil {
		return nil, err
	}
	defer release(src)

	g.instr("cmp", lreg.Name(8), operand(src))
	return ComparisonLocation{cond}, nil
}

func (g *Generator) genConditional(c *ast.Conditional) error {
	label := localLabel(g.ctx.NewLabel())

	if err := g.genBranchIfFalse(c.Condition, label); err != nil {
		return err
	}
	if err := g.genScope(c.Body); err != nil {
		return err
	}
	g.label(label)
	return nil
}

// genBranchIfFalse jumps to target when cond evaluates to zero or its
// comparison does not hold.
func (g *Generator) genBranchIfFalse(cond ast.Expression, target string) error {
	loc, err := g.genExpression(cond)
	if err != nil {
		return err
	}
	defer release(loc)

	switch l := loc.(type) {
	case ComparisonLocation:
		g.instr(l.Cond.InverseJump(), target)
		return nil
	case MemoryLocation:
		g.instr("cmp", l.Operand(), "0")
	case RegisterLocation:
		g.instr("cmp", l.Reg.Name(8), "0")
	case ImmediateLocation:
		reg, err := g.materialize(l, cond.Tok())
		if err != nil {
			return err
		}
		defer reg.Release()
		g.instr("cmp", reg.Name(8), "0")
	}
	g.instr("je", target)
	return nil
}
