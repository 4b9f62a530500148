package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thiremani/cepheid/ast"
	"github.com/thiremani/cepheid/token"
	"github.com/thiremani/cepheid/types"
)

const prologue = `bits 64
default rel

segment .text
global _entry
extern _CRT_INIT
extern ExitProcess

_entry:
  push rbp
  mov rbp, rsp
  sub rsp, 32

  call _CRT_INIT

  call cep_main

  mov rcx, rax
  call ExitProcess

`

// Generator walks a module and emits NASM source for Windows x64.
// A Generator is used for a single module.
type Generator struct {
	out     *strings.Builder
	ctx     *Context
	regs    *RegisterPool
	pending []*ast.Function // nested functions waiting for their parent to finish
	defined map[string]bool
}

func NewGenerator() *Generator {
	return &Generator{
		out:     &strings.Builder{},
		ctx:     NewContext(),
		regs:    NewRegisterPool(),
		defined: make(map[string]bool),
	}
}

// Generate returns the assembly for module, or the first error met. No
// partial output is returned on failure.
func (g *Generator) Generate(module *ast.Module) (string, error) {
	g.out.WriteString(prologue)
	for _, fn := range module.Functions {
		if err := g.genFunction(fn); err != nil {
			return "", err
		}
	}
	return g.out.String(), nil
}

func (g *Generator) line(format string, args ...any) {
	fmt.Fprintf(g.out, format+"\n", args...)
}

func (g *Generator) instr(op string, args ...string) {
	if len(args) == 0 {
		g.line("  %s", op)
		return
	}
	g.line("  %s %s", op, strings.Join(args, ", "))
}

func (g *Generator) label(name string) {
	g.line("%s:", name)
}

func (g *Generator) acquire(tok token.Token) (*RegisterHandle, error) {
	reg, err := g.regs.Acquire()
	if err != nil {
		return nil, genError(tok, err, "expression needs more than %d registers", NumRegisters)
	}
	return reg, nil
}

func (g *Generator) genFunction(fn *ast.Function) error {
	if g.defined[fn.Name] {
		return genError(fn.Token, nil, "function %s redeclared", fn.Name)
	}
	g.defined[fn.Name] = true
	if len(fn.Params) > 0 {
		return genError(fn.Params[0].Name.Token, ErrUnsupportedOperation, "function parameters are not supported")
	}

	g.ctx.PushFunction()
	if _, err := g.ctx.ResolveType(fn.ReturnType); err != nil {
		return err
	}
	space, err := fn.RequiredStackSpace(g.ctx)
	if err != nil {
		return err
	}

	outer := g.pending
	g.pending = nil
	body, saved, err := g.genBody(fn.Body)
	if err != nil {
		return err
	}

	// callee-saved registers live above the locals, just below rbp
	saveArea := types.AlignUp(8*len(saved), 16)
	var restore strings.Builder
	g.label(funcLabel(fn.Name))
	g.instr("push", "rbp")
	g.instr("mov", "rbp", "rsp")
	g.instr("sub", "rsp", strconv.Itoa(ShadowSpace+types.AlignUp(space, 16)+saveArea))
	for i, reg := range saved {
		slot := fmt.Sprintf("QWORD [rbp - %d]", 8*(i+1))
		g.instr("mov", slot, reg.Name(8))
		fmt.Fprintf(&restore, "  mov %s, %s\n", reg.Name(8), slot)
	}
	g.out.WriteString(strings.ReplaceAll(body, "  leave\n", restore.String()+"  leave\n"))
	g.line("")

	if g.ctx.Peak() > space {
		return genError(fn.Token, nil, "locals of %s need %d bytes, only %d reserved", fn.Name, g.ctx.Peak(), space)
	}
	g.ctx.Pop()

	nested := g.pending
	g.pending = outer
	for _, n := range nested {
		if err := g.genFunction(n); err != nil {
			return err
		}
	}
	return nil
}

// genBody generates the statements of a function into their own buffer and
// reports the callee-saved registers they used.
func (g *Generator) genBody(body *ast.Scope) (string, []Register, error) {
	parent := g.out
	g.out = &strings.Builder{}
	defer func() { g.out = parent }()

	g.regs.TakeCalleeSaved()
	for _, stmt := range body.Statements {
		if err := g.genStatement(stmt); err != nil {
			return "", nil, err
		}
	}
	if !endsInReturn(body) {
		g.epilogue()
	}
	return g.out.String(), g.regs.TakeCalleeSaved(), nil
}

func endsInReturn(s *ast.Scope) bool {
	if len(s.Statements) == 0 {
		return false
	}
	_, ok := s.Statements[len(s.Statements)-1].(*ast.ReturnStatement)
	return ok
}

func (g *Generator) epilogue() {
	g.instr("leave")
	g.instr("ret")
}

func (g *Generator) genStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		return g.genVariableDeclaration(s)
	case *ast.ReturnStatement:
		return g.genReturn(s)
	case *ast.Conditional:
		return g.genConditional(s)
	case *ast.Loop:
		return g.genLoop(s)
	case *ast.Scope:
		return g.genScope(s)
	case *ast.ExpressionStatement:
		return g.genDiscard(s.Expression)
	case *ast.Function:
		g.pending = append(g.pending, s)
		return nil
	}
	return genError(stmt.Tok(), nil, "unexpected %T in statement position", stmt)
}

func (g *Generator) genScope(s *ast.Scope) error {
	g.ctx.PushBlock()
	for _, stmt := range s.Statements {
		if err := g.genStatement(stmt); err != nil {
			return err
		}
	}
	g.ctx.Pop()
	return nil
}

// The initializer is generated before the name is declared, so it still
// sees any outer variable of the same name.
func (g *Generator) genVariableDeclaration(d *ast.VariableDeclaration) error {
	var value Location
	if d.Value != nil {
		var err error
		if value, err = g.genExpression(d.Value); err != nil {
			return err
		}
		defer release(value)
	}

	v, err := g.ctx.Declare(d)
	if err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	return g.store(v.Location(), value, d.Value.Tok())
}

func (g *Generator) genReturn(r *ast.ReturnStatement) error {
	if r.Value != nil {
		loc, err := g.genExpression(r.Value)
		if err != nil {
			return err
		}
		reg, err := g.materialize(loc, r.Value.Tok())
		if err != nil {
			return err
		}
		defer reg.Release()
		if name := reg.Name(8); name != "rax" {
			g.instr("mov", "rax", name)
		}
	}
	g.epilogue()
	return nil
}

func (g *Generator) genExpression(exp ast.Expression) (Location, error) {
	switch e := exp.(type) {
	case *ast.IntegerLiteral:
		return ImmediateLocation{e.Value}, nil
	case *ast.Identifier:
		v, err := g.ctx.Lookup(e)
		if err != nil {
			return nil, err
		}
		return v.Location(), nil
	case *ast.BinaryOperation:
		return g.genBinaryOperation(e)
	case *ast.UnaryOperation:
		return g.genUnaryOperation(e)
	}
	return nil, genError(exp.Tok(), nil, "unexpected %T in expression position", exp)
}

// materialize moves loc into a register. A RegisterLocation is returned as
// is, so the caller ends up owning exactly one handle either way.
func (g *Generator) materialize(loc Location, tok token.Token) (*RegisterHandle, error) {
	if r, ok := loc.(RegisterLocation); ok {
		return r.Reg, nil
	}

	reg, err := g.acquire(tok)
	if err != nil {
		return nil, err
	}
	switch l := loc.(type) {
	case MemoryLocation:
		g.load(reg, l)
	case ImmediateLocation:
		g.instr("mov", reg.Name(8), l.Operand())
	case ComparisonLocation:
		// mov leaves the flags alone, xor would not
		g.instr("mov", reg.Name(8), "0")
		g.instr(l.Cond.Set(), reg.Name(1))
	}
	return reg, nil
}

// load sign extends a slot into the full 64-bit register.
func (g *Generator) load(reg *RegisterHandle, m MemoryLocation) {
	switch m.Size {
	case 8:
		g.instr("mov", reg.Name(8), m.Operand())
	case 4:
		g.instr("movsxd", reg.Name(8), m.Operand())
	default:
		g.instr("movsx", reg.Name(8), m.Operand())
	}
}

// sourceOperand returns loc in a form usable as the second operand of a
// 64-bit instruction: a register, an imm32 or a QWORD slot.
func (g *Generator) sourceOperand(loc Location, tok token.Token) (Location, error) {
	switch l := loc.(type) {
	case RegisterLocation:
		return l, nil
	case ImmediateLocation:
		if fitsImm32(l.Value) {
			return l, nil
		}
	case MemoryLocation:
		if l.Size == 8 {
			return l, nil
		}
	}
	reg, err := g.materialize(loc, tok)
	if err != nil {
		return nil, err
	}
	return RegisterLocation{reg}, nil
}

// store writes value to dst, truncating to the slot size.
func (g *Generator) store(dst MemoryLocation, value Location, tok token.Token) error {
	switch v := value.(type) {
	case RegisterLocation:
		g.instr("mov", dst.Operand(), v.Reg.Name(dst.Size))
		return nil
	case ImmediateLocation:
		if fitsStore(v.Value, dst.Size) {
			g.instr("mov", dst.Operand(), v.Operand())
			return nil
		}
	}

	reg, err := g.materialize(value, tok)
	if err != nil {
		return err
	}
	defer reg.Release()
	g.instr("mov", dst.Operand(), reg.Name(dst.Size))
	return nil
}
