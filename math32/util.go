package math32

import (
	"math"
	"math/bits"
)

// Min returns the minimum of two values.
func Min[T float32 | int32 | int](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two values.
func Max[T float32 | int32 | int](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Clamp limits a to [lo, hi].
func Clamp[T float32 | int32 | int](a, lo, hi T) T {
	return Max(lo, Min(a, hi))
}

// Abs returns the absolute value of a float32.
func Abs(a float32) float32 {
	if a < 0 {
		return -a
	}
	return a
}

// Floor returns the greatest integer value less than or equal to a.
func Floor(a float32) float32 {
	return float32(math.Floor(float64(a)))
}

// Sign returns -1 for negative values and 1 otherwise.
func Sign(a float32) float32 {
	if a < 0 {
		return -1
	}
	return 1
}

// Step returns 0 when x < edge, 1 otherwise.
func Step(edge, x float32) float32 {
	if x < edge {
		return 0
	}
	return 1
}

// Pow returns a**b.
func Pow(a, b float32) float32 {
	return float32(math.Pow(float64(a), float64(b)))
}

// Sqrt returns the square root of a float32.
func Sqrt(a float32) float32 {
	return float32(math.Sqrt(float64(a)))
}

// PopCount counts the set bits of the low 32 bits of x.
func PopCount(x int32) int {
	return bits.OnesCount32(uint32(x))
}

// MaxFloat32 is the largest finite float32.
const MaxFloat32 = math.MaxFloat32
