package compiler

import (
	"strconv"

	"github.com/thiremani/cepheid/types"
)

// Location says where the value of an expression currently is. Values are
// only moved into a register when the consuming instruction needs one.
type Location interface {
	isLocation()
}

// RegisterLocation owns its register. Whoever ends up holding the location
// releases it.
type RegisterLocation struct {
	Reg *RegisterHandle
}

// MemoryLocation is a stack slot of Size bytes at Address, e.g. "rsp + 36".
type MemoryLocation struct {
	Address string
	Size    int
}

type ImmediateLocation struct {
	Value int64
}

// ComparisonLocation is a value that only exists in the flags register.
type ComparisonLocation struct {
	Cond Condition
}

func (RegisterLocation) isLocation()   {}
func (MemoryLocation) isLocation()     {}
func (ImmediateLocation) isLocation()  {}
func (ComparisonLocation) isLocation() {}

var sizePrefixes = map[int]string{
	1: "BYTE",
	2: "WORD",
	4: "DWORD",
	8: "QWORD",
}

// Operand renders the slot with an explicit size, e.g. "DWORD [rsp + 36]".
func (m MemoryLocation) Operand() string {
	return sizePrefixes[m.Size] + " [" + m.Address + "]"
}

func (i ImmediateLocation) Operand() string {
	return strconv.FormatInt(i.Value, 10)
}

// release frees the register held by loc, if any.
func release(loc Location) {
	if r, ok := loc.(RegisterLocation); ok {
		r.Reg.Release()
	}
}

// operand renders loc as a 64-bit source operand. loc must already be a
// register, an imm32 or a QWORD slot.
func operand(loc Location) string {
	switch l := loc.(type) {
	case RegisterLocation:
		return l.Reg.Name(8)
	case MemoryLocation:
		return l.Operand()
	case ImmediateLocation:
		return l.Operand()
	}
	return ""
}

// fitsImm32 reports whether v can be encoded as a sign extended imm32.
func fitsImm32(v int64) bool {
	return types.I32.FitsSigned(v)
}

// fitsStore reports whether v can be written to a slot of size bytes as an
// immediate without changing the stored bits.
func fitsStore(v int64, size int) bool {
	if size == 8 {
		return fitsImm32(v)
	}
	t, ok := types.OfSize(size)
	return ok && t.Fits(v)
}

// fitsCompare reports whether comparing a slot of size bytes against v
// directly gives the same result as comparing the sign extended value.
func fitsCompare(v int64, size int) bool {
	if size == 8 {
		return fitsImm32(v)
	}
	t, ok := types.OfSize(size)
	return ok && t.FitsSigned(v)
}
