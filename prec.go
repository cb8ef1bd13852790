package abacus

import (
	"math"
	"sync/atomic"
)

// DefaultPrecision is the number of significant decimal digits used until
// SetPrecision is called.
const DefaultPrecision = 50

var precision atomic.Int64

// Precision returns the number of significant decimal digits used to compute
// and render floating-point results.
func Precision() int {
	if p := precision.Load(); p > 0 {
		return int(p)
	}
	return DefaultPrecision
}

// SetPrecision sets the number of significant decimal digits. Values below 1
// are treated as 1. Computations already in progress keep the precision they
// started with.
func SetPrecision(digits int) {
	if digits < 1 {
		digits = 1
	}
	precision.Store(int64(digits))
}

// precBits returns the mantissa size in bits for a number of decimal digits,
// with a few guard bits so that the last printed digit is rounded correctly.
func precBits(digits int) uint {
	return uint(math.Ceil(float64(digits)*math.Log2(10))) + 16
}
