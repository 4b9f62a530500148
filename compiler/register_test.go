package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterNames(t *testing.T) {
	tests := []struct {
		reg      Register
		expected [4]string
	}{
		{Register{Original, "a"}, [4]string{"al", "ax", "eax", "rax"}},
		{Register{Original, "d"}, [4]string{"dl", "dx", "edx", "rdx"}},
		{Register{AMD64, "r8"}, [4]string{"r8b", "r8w", "r8d", "r8"}},
		{Register{AMD64, "r15"}, [4]string{"r15b", "r15w", "r15d", "r15"}},
	}

	for _, tt := range tests {
		t.Run(tt.reg.Base, func(t *testing.T) {
			for i, size := range []int{1, 2, 4, 8} {
				assert.Equal(t, tt.expected[i], tt.reg.Name(size))
			}
		})
	}
}

func TestRegisterPoolExhaustion(t *testing.T) {
	pool := NewRegisterPool()
	held := []*RegisterHandle{}
	seen := map[string]bool{}

	for i := 0; i < NumRegisters; i++ {
		h, err := pool.Acquire()
		require.NoError(t, err, "acquire %d", i)
		assert.False(t, seen[h.Name(8)], "%s handed out twice", h.Name(8))
		seen[h.Name(8)] = true
		held = append(held, h)
	}
	assert.Equal(t, 12, NumRegisters)
	assert.Equal(t, NumRegisters, pool.InUse())

	_, err := pool.Acquire()
	assert.True(t, errors.Is(err, ErrRegistersExhausted))

	held[3].Release()
	h, err := pool.Acquire()
	require.NoError(t, err)
	assert.Equal(t, held[3].Name(8), h.Name(8))
}

func TestRegisterReleaseOnce(t *testing.T) {
	pool := NewRegisterPool()
	first, err := pool.Acquire()
	require.NoError(t, err)
	assert.Equal(t, "rax", first.Name(8))

	first.Release()
	second, err := pool.Acquire()
	require.NoError(t, err)
	assert.Equal(t, "rax", second.Name(8))

	// a stale handle must not free a register someone else now owns
	first.Release()
	assert.Equal(t, 1, pool.InUse())

	second.Release()
	second.Release()
	assert.Equal(t, 0, pool.InUse())

	var nilHandle *RegisterHandle
	nilHandle.Release()
}

func TestLocationOperands(t *testing.T) {
	assert.Equal(t, "BYTE [rsp + 32]", MemoryLocation{Address: "rsp + 32", Size: 1}.Operand())
	assert.Equal(t, "WORD [rsp + 34]", MemoryLocation{Address: "rsp + 34", Size: 2}.Operand())
	assert.Equal(t, "DWORD [rsp + 36]", MemoryLocation{Address: "rsp + 36", Size: 4}.Operand())
	assert.Equal(t, "QWORD [rsp + 40]", MemoryLocation{Address: "rsp + 40", Size: 8}.Operand())
	assert.Equal(t, "-7", ImmediateLocation{-7}.Operand())

	assert.True(t, fitsStore(255, 1))
	assert.True(t, fitsStore(-128, 1))
	assert.False(t, fitsStore(256, 1))
	assert.False(t, fitsStore(1<<31, 8))
	assert.True(t, fitsStore(1<<31, 4))

	assert.True(t, fitsCompare(127, 1))
	assert.False(t, fitsCompare(255, 1))
	assert.False(t, fitsCompare(1<<31, 4))
}

func TestConditionTable(t *testing.T) {
	tests := []struct {
		cond                 Condition
		set, jump, inverse string
	}{
		{Less, "setl", "jl", "jnl"},
		{LessEqual, "setle", "jle", "jnle"},
		{Equal, "sete", "je", "jne"},
		{NotEqual, "setne", "jne", "je"},
		{Greater, "setg", "jg", "jng"},
		{GreaterEqual, "setge", "jge", "jnge"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.set, tt.cond.Set())
		assert.Equal(t, tt.jump, tt.cond.Jump())
		assert.Equal(t, tt.inverse, tt.cond.InverseJump())
	}
}

func TestTakeCalleeSaved(t *testing.T) {
	pool := NewRegisterPool()
	var handles []*RegisterHandle
	for i := 0; i < 7; i++ {
		h, err := pool.Acquire()
		require.NoError(t, err)
		handles = append(handles, h)
	}
	assert.Empty(t, pool.TakeCalleeSaved(), "caller-saved registers need no saving")

	h, err := pool.Acquire()
	require.NoError(t, err)
	assert.Equal(t, "rbx", h.Name(8))
	h.Release()

	// released registers still count until the record is taken
	assert.Equal(t, []Register{{Original, "b"}}, pool.TakeCalleeSaved())
	assert.Empty(t, pool.TakeCalleeSaved())

	for _, h := range handles {
		h.Release()
	}
	assert.True(t, Register{AMD64, "r12"}.CalleeSaved())
	assert.False(t, Register{AMD64, "r11"}.CalleeSaved())
	assert.False(t, Register{Original, "a"}.CalleeSaved())
}
