package compiler

import "fmt"

const FuncPrefix = "cep_" // prefix for function labels

func funcLabel(name string) string {
	return FuncPrefix + name
}

// Local labels start with a dot so NASM scopes them to the preceding
// function label.
func localLabel(n int) string {
	return fmt.Sprintf(".L%d", n)
}

func loopLabels(n int) (cond, end string) {
	l := localLabel(n)
	return l + "_cond", l + "_end"
}
