package compiler

import (
	"errors"
	"fmt"

	"github.com/thiremani/cepheid/token"
)

var (
	ErrRegistersExhausted   = errors.New("register pool exhausted")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrUnresolved           = errors.New("unresolved name")
)

// genError builds a GenPhase CompileError at tok. err may be nil or one of
// the sentinels above.
func genError(tok token.Token, err error, format string, args ...any) error {
	return &token.CompileError{
		Phase: token.GenPhase,
		Token: tok,
		Msg:   fmt.Sprintf(format, args...),
		Err:   err,
	}
}
