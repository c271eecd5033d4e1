package math

import "golang.org/x/exp/constraints"

// Lerp returns a + (b-a)*t. t is not clamped.
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

// Clamp limits x to the range [lo, hi].
func Clamp[T constraints.Integer | constraints.Float](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Abs returns the absolute value of x.
func Abs[T constraints.Signed | constraints.Float](x T) T {
	if x < 0 {
		return -x
	}
	return x
}
