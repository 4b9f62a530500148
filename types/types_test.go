package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrimitiveLayout(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		align int
	}{
		{"i8", 1, 1},
		{"i16", 2, 2},
		{"i32", 4, 4},
		{"i64", 8, 8},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			typ, ok := Primitive(tc.name)
			assert.True(t, ok)
			assert.Equal(t, tc.size, typ.Size())
			assert.Equal(t, tc.align, typ.Align())
			assert.Equal(t, tc.name, typ.String())
			assert.True(t, IsReservedTypeName(tc.name))
		})
	}

	_, ok := Primitive("i128")
	assert.False(t, ok)
	assert.False(t, IsReservedTypeName("I32"))
	assert.Equal(t, []string{"i8", "i16", "i32", "i64"}, ReservedTypeNames())
}

func TestFits(t *testing.T) {
	assert.True(t, I8.Fits(127))
	assert.True(t, I8.Fits(-128))
	assert.True(t, I8.Fits(255))
	assert.False(t, I8.Fits(256))
	assert.False(t, I8.Fits(-129))
	assert.True(t, I32.Fits(2147483647))
	assert.True(t, I32.Fits(4294967295))
	assert.False(t, I32.Fits(4294967296))
	assert.True(t, I64.Fits(-9223372036854775808))
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, 0, AlignUp(0, 16))
	assert.Equal(t, 16, AlignUp(1, 16))
	assert.Equal(t, 16, AlignUp(16, 16))
	assert.Equal(t, 8, AlignUp(5, 4))
	assert.Equal(t, 3, AlignUp(3, 1))
}

func TestFitsSigned(t *testing.T) {
	assert.True(t, I8.FitsSigned(127))
	assert.False(t, I8.FitsSigned(128))
	assert.True(t, I32.FitsSigned(-2147483648))
	assert.False(t, I32.FitsSigned(2147483648))
	assert.True(t, I64.FitsSigned(1<<62))
}

func TestOfSize(t *testing.T) {
	typ, ok := OfSize(4)
	assert.True(t, ok)
	assert.Equal(t, I32, typ)

	_, ok = OfSize(3)
	assert.False(t, ok)
}
