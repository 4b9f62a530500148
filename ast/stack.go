package ast

import "github.com/thiremani/cepheid/types"

// Layout resolves a declared type name to its size and alignment in bytes.
type Layout interface {
	TypeLayout(typeName *Identifier) (size, align int, err error)
}

// RequiredStackSpace is the number of bytes the function's locals need.
// Parameters are not stored on the stack.
func (f *Function) RequiredStackSpace(l Layout) (int, error) {
	if f.Body == nil {
		return 0, nil
	}
	return f.Body.RequiredStackSpace(l)
}

// RequiredStackSpace lays out the scope's own declarations in order and
// adds the largest requirement among the directly nested scopes. Sibling
// scopes never run at the same time, so they share the same bytes.
//
// The own-declarations part is rounded to 8 so that a nested scope starting
// at any point of its parent still fits under the bound.
func (s *Scope) RequiredStackSpace(l Layout) (int, error) {
	cursor := 0
	for _, local := range s.locals {
		size, align, err := l.TypeLayout(local.Type)
		if err != nil {
			return 0, err
		}
		cursor = types.AlignUp(cursor, align) + size
	}

	nestedMax := 0
	for _, scope := range s.scopes {
		n, err := scope.RequiredStackSpace(l)
		if err != nil {
			return 0, err
		}
		nestedMax = max(nestedMax, n)
	}

	return types.AlignUp(cursor, 8) + nestedMax, nil
}
