package types

var primitives = []Int{I8, I16, I32, I64}

var primitiveSet = func() map[string]Int {
	m := make(map[string]Int, len(primitives))
	for _, t := range primitives {
		m[t.String()] = t
	}
	return m
}()

// ReservedTypeNames returns a copy of the built-in type names.
func ReservedTypeNames() []string {
	names := make([]string, 0, len(primitives))
	for _, t := range primitives {
		names = append(names, t.String())
	}
	return names
}

// IsReservedTypeName reports whether name is a built-in type.
func IsReservedTypeName(name string) bool {
	_, ok := primitiveSet[name]
	return ok
}

// Primitive looks up a built-in type by its source name.
func Primitive(name string) (Int, bool) {
	t, ok := primitiveSet[name]
	return t, ok
}
