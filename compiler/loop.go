package compiler

import "github.com/thiremani/cepheid/ast"

// genLoop emits
//
//	init
//	.Ln_cond:
//	  branch to .Ln_end unless cond
//	  body
//	  update
//	  jmp .Ln_cond
//	.Ln_end:
func (g *Generator) genLoop(l *ast.Loop) error {
	if err := g.genDiscard(l.Init); err != nil {
		return err
	}

	cond, end := loopLabels(g.ctx.NewLabel())
	g.label(cond)
	if err := g.genBranchIfFalse(l.Condition, end); err != nil {
		return err
	}
	if err := g.genScope(l.Body); err != nil {
		return err
	}
	if err := g.genDiscard(l.Update); err != nil {
		return err
	}
	g.instr("jmp", cond)
	g.label(end)
	return nil
}

// genDiscard evaluates exp for its side effects. nil is allowed.
func (g *Generator) genDiscard(exp ast.Expression) error {
	if exp == nil {
		return nil
	}
	loc, err := g.genExpression(exp)
	if err != nil {
		return err
	}
	release(loc)
	return nil
}
