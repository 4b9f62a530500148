package lower

import (
	"fmt"

	"github.com/thiremani/cepheid/ast"
	"github.com/thiremani/cepheid/token"
)

// BasicBlock is a straight-line run of instructions. Only the first may be
// a label and only the last may be a jump or return.
type BasicBlock struct {
	Label  string // empty for a block entered by fallthrough
	Instrs []Instruction
}

// BuildBlocks splits instrs at labels and after jumps and returns.
func BuildBlocks(instrs []Instruction) []*BasicBlock {
	blocks := []*BasicBlock{}
	var cur *BasicBlock

	for _, in := range instrs {
		if lbl, ok := in.(*Label); ok {
			cur = &BasicBlock{Label: lbl.Name}
			blocks = append(blocks, cur)
		} else if cur == nil {
			cur = &BasicBlock{}
			blocks = append(blocks, cur)
		}

		cur.Instrs = append(cur.Instrs, in)

		switch in.(type) {
		case *Jump, *Return:
			cur = nil
		}
	}
	return blocks
}

// EventType labels a variable access as Read or Write.
type EventType int

const (
	Read EventType = iota
	Write
)

// VarEvent records a single read or write of Var.
type VarEvent struct {
	Var   *Var
	Kind  EventType
	Token token.Token
}

// events lists the accesses of one instruction, reads before writes.
func events(in Instruction) []VarEvent {
	var evs []VarEvent
	read := func(v Value, tok token.Token) {
		if vr, ok := v.(*Var); ok {
			evs = append(evs, VarEvent{Var: vr, Kind: Read, Token: tok})
		}
	}
	write := func(v Value, tok token.Token) {
		if vr, ok := v.(*Var); ok {
			evs = append(evs, VarEvent{Var: vr, Kind: Write, Token: tok})
		}
	}

	switch i := in.(type) {
	case *Copy:
		read(i.Src, i.Token)
		write(i.Dst, i.Token)
	case *BinaryOp:
		if i.Op != ast.Assign {
			read(i.Lhs, i.Token)
		}
		read(i.Rhs, i.Token)
		write(i.Result, i.Token)
	case *UnaryOp:
		read(i.Operand, i.Token)
		write(i.Result, i.Token)
	case *Jump:
		if i.Cond != nil {
			read(i.Cond, i.Token)
		}
	case *Return:
		if i.Value != nil {
			read(i.Value, i.Token)
		}
	}
	return evs
}

// Analyze reports variables that are read before any write in program
// order. Writes under a branch count as definitions, so the check only
// finds reads that can never have been preceded by a store.
func Analyze(fn *Function) []*token.CompileError {
	var errs []*token.CompileError
	defined := make(map[*Var]struct{})
	reported := make(map[*Var]struct{})

	for _, in := range fn.Instrs {
		for _, e := range events(in) {
			if e.Kind == Write {
				defined[e.Var] = struct{}{}
				continue
			}
			if _, ok := defined[e.Var]; ok {
				continue
			}
			if _, ok := reported[e.Var]; ok {
				continue
			}
			reported[e.Var] = struct{}{}
			errs = append(errs, &token.CompileError{
				Phase: token.LowerPhase,
				Token: e.Token,
				Msg:   fmt.Sprintf("variable %q is read before it is assigned", e.Var.Name),
			})
		}
	}
	return errs
}
