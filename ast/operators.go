package ast

type BinaryOp int

const (
	Add BinaryOp = iota
	Subtract
	Multiply
	Divide
	LessThan
	LessEqual
	GreaterThan
	GreaterEqual
	Equal
	NotEqual
	Assign
)

var binaryOps = [...]string{
	Add:          "+",
	Subtract:     "-",
	Multiply:     "*",
	Divide:       "/",
	LessThan:     "<",
	LessEqual:    "<=",
	GreaterThan:  ">",
	GreaterEqual: ">=",
	Equal:        "==",
	NotEqual:     "!=",
	Assign:       "=",
}

func (op BinaryOp) String() string {
	if 0 <= op && int(op) < len(binaryOps) {
		return binaryOps[op]
	}
	return "?"
}

// IsComparison reports whether op yields a flags result rather than a value.
func (op BinaryOp) IsComparison() bool {
	return op >= LessThan && op <= NotEqual
}

// LookupBinaryOp maps operator text such as "<=" to its BinaryOp.
func LookupBinaryOp(symbol string) (BinaryOp, bool) {
	for op, s := range binaryOps {
		if s == symbol {
			return BinaryOp(op), true
		}
	}
	return 0, false
}

type UnaryOp int

const (
	Negate UnaryOp = iota
	Not
	Decrement
	Increment
)

var unaryOps = [...]string{
	Negate:    "-",
	Not:       "!",
	Decrement: "--",
	Increment: "++",
}

func (op UnaryOp) String() string {
	if 0 <= op && int(op) < len(unaryOps) {
		return unaryOps[op]
	}
	return "?"
}

func LookupUnaryOp(symbol string) (UnaryOp, bool) {
	for op, s := range unaryOps {
		if s == symbol {
			return UnaryOp(op), true
		}
	}
	return 0, false
}
