// Package mathx holds small numeric helpers shared by the rasterizer, the
// fragment pipeline and the pixel converters.
package mathx

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Number is any integer or floating point type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Clamp limits v to [lo, hi].
func Clamp[T Number](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Saturate clamps v to [0, 1].
func Saturate[T constraints.Float](v T) T {
	return Clamp(v, 0, 1)
}

// Lerp interpolates between a and b.
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

// Log2Floor returns floor(log2(v)) for v > 0 and the fractional position of v
// inside [2^i, 2^(i+1)), computed exactly from the float32 bit pattern.
// Subnormals and values <= 0 report ok == false.
func Log2Floor(v float32) (i int, frac float32, ok bool) {
	bits := math.Float32bits(v)
	if v <= 0 || bits>>23&0xFF == 0 || bits>>23&0xFF == 0xFF {
		return 0, 0, false
	}
	exp := int(bits>>23&0xFF) - 127
	mant := bits & 0x7FFFFF
	return exp, float32(mant) / float32(1<<23), true
}

// IsPow2 reports whether v is a positive power of two.
func IsPow2[T constraints.Integer](v T) bool {
	return v > 0 && v&(v-1) == 0
}

// Log2 returns the base two logarithm of a power of two.
func Log2[T constraints.Integer](v T) int {
	n := 0
	for v > 1 {
		v >>= 1
		n++
	}
	return n
}

// CeilDiv returns ceil(a / b) for positive b.
func CeilDiv[T constraints.Integer](a, b T) T {
	return (a + b - 1) / b
}
