package token

import "fmt"

// Phase names the pipeline stage that raised a CompileError.
type Phase int

const (
	LexPhase Phase = iota
	ParsePhase
	GenPhase
	LowerPhase
)

func (p Phase) String() string {
	switch p {
	case LexPhase:
		return "lex"
	case ParsePhase:
		return "parse"
	case GenPhase:
		return "generation"
	case LowerPhase:
		return "lowering"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// CompileError is the single error type every stage returns. Token may be
// the zero value when the failure has no source position (for example
// register exhaustion). Err optionally carries a sentinel for errors.Is.
type CompileError struct {
	Phase Phase
	Token Token
	Msg   string
	Err   error
}

func (ce *CompileError) Error() string {
	if ce.Token.Pos.Line == 0 {
		return fmt.Sprintf("%s error: %s", ce.Phase, ce.Msg)
	}
	return fmt.Sprintf("%s error at %s: %s", ce.Phase, ce.Token.Pos, ce.Msg)
}

func (ce *CompileError) Unwrap() error {
	return ce.Err
}
