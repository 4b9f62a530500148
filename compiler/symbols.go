package compiler

import (
	"fmt"

	"github.com/thiremani/cepheid/types"
)

// ShadowSpace is the callee-owned area the Windows x64 convention reserves
// at the bottom of every frame. Locals are placed above it.
const ShadowSpace = 32

type Variable struct {
	Name   string
	Type   types.Type
	Offset int
}

func (v Variable) Location() MemoryLocation {
	return MemoryLocation{
		Address: fmt.Sprintf("rsp + %d", ShadowSpace+v.Offset),
		Size:    v.Type.Size(),
	}
}
