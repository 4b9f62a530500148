package types

import "fmt"

// Type is anything a declaration can name. Size and Align are in bytes.
type Type interface {
	String() string
	Size() int
	Align() int
}

// Int is a signed two's complement integer of Width bits.
type Int struct {
	Width int // 8, 16, 32 or 64
}

func (i Int) String() string {
	return fmt.Sprintf("i%d", i.Width)
}

func (i Int) Size() int {
	return i.Width / 8
}

func (i Int) Align() int {
	return i.Width / 8
}

// Fits reports whether v is representable in i without truncation, either
// as a signed or as an unsigned value of the same width.
func (i Int) Fits(v int64) bool {
	if i.Width >= 64 {
		return true
	}
	lo := -(int64(1) << (i.Width - 1))
	hi := int64(1)<<i.Width - 1
	return lo <= v && v <= hi
}

// FitsSigned reports whether v is in the signed range of i.
func (i Int) FitsSigned(v int64) bool {
	if i.Width >= 64 {
		return true
	}
	lo := -(int64(1) << (i.Width - 1))
	hi := int64(1)<<(i.Width-1) - 1
	return lo <= v && v <= hi
}

// OfSize returns the integer type occupying size bytes.
func OfSize(size int) (Int, bool) {
	switch size {
	case 1, 2, 4, 8:
		return Int{Width: size * 8}, true
	}
	return Int{}, false
}

var (
	I8  = Int{Width: 8}
	I16 = Int{Width: 16}
	I32 = Int{Width: 32}
	I64 = Int{Width: 64}
)

// AlignUp rounds n up to the next multiple of align (align > 0).
func AlignUp(n, align int) int {
	return (n + align - 1) / align * align
}
