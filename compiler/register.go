package compiler

type RegisterKind int

const (
	// Original registers use the legacy names: al, ax, eax, rax.
	Original RegisterKind = iota
	// AMD64 registers use suffixes: r8b, r8w, r8d, r8.
	AMD64
)

type Register struct {
	Kind RegisterKind
	Base string
}

// Name returns the register's name for an access of size bytes.
func (r Register) Name(size int) string {
	if r.Kind == AMD64 {
		switch size {
		case 1:
			return r.Base + "b"
		case 2:
			return r.Base + "w"
		case 4:
			return r.Base + "d"
		}
		return r.Base
	}

	switch size {
	case 1:
		return r.Base + "l"
	case 2:
		return r.Base + "x"
	case 4:
		return "e" + r.Base + "x"
	}
	return "r" + r.Base + "x"
}

// CalleeSaved reports whether the Windows x64 convention requires a function
// to preserve r for its caller.
func (r Register) CalleeSaved() bool {
	switch r.Base {
	case "b", "r12", "r13", "r14", "r15":
		return true
	}
	return false
}

// Caller-saved registers come first so short functions never touch rbx or
// r12-r15.
var registers = [...]Register{
	{Original, "a"},
	{Original, "c"},
	{Original, "d"},
	{AMD64, "r8"},
	{AMD64, "r9"},
	{AMD64, "r10"},
	{AMD64, "r11"},
	{Original, "b"},
	{AMD64, "r12"},
	{AMD64, "r13"},
	{AMD64, "r14"},
	{AMD64, "r15"},
}

const NumRegisters = len(registers)

// RegisterPool hands out general purpose registers for one compilation.
// It is not safe for concurrent use.
type RegisterPool struct {
	busy    [NumRegisters]bool
	touched [NumRegisters]bool // acquired since the last TakeCalleeSaved
}

func NewRegisterPool() *RegisterPool {
	return &RegisterPool{}
}

// Acquire marks the first free register busy. It fails with
// ErrRegistersExhausted when all registers are held.
func (p *RegisterPool) Acquire() (*RegisterHandle, error) {
	for i, busy := range p.busy {
		if !busy {
			p.busy[i] = true
			p.touched[i] = true
			return &RegisterHandle{pool: p, index: i}, nil
		}
	}
	return nil, ErrRegistersExhausted
}

// TakeCalleeSaved returns the callee-saved registers acquired since the
// previous call, in pool order, and starts a new record.
func (p *RegisterPool) TakeCalleeSaved() []Register {
	var saved []Register
	for i, touched := range p.touched {
		if touched && registers[i].CalleeSaved() {
			saved = append(saved, registers[i])
		}
	}
	p.touched = [NumRegisters]bool{}
	return saved
}

func (p *RegisterPool) InUse() int {
	n := 0
	for _, busy := range p.busy {
		if busy {
			n++
		}
	}
	return n
}

// RegisterHandle is exclusive ownership of one register until Release.
type RegisterHandle struct {
	pool     *RegisterPool
	index    int
	released bool
}

func (h *RegisterHandle) Register() Register {
	return registers[h.index]
}

func (h *RegisterHandle) Name(size int) string {
	return registers[h.index].Name(size)
}

// Release returns the register to its pool. Calls after the first are no-ops.
func (h *RegisterHandle) Release() {
	if h == nil || h.released {
		return
	}
	h.released = true
	h.pool.busy[h.index] = false
}
