package utils

import "math/big"

// MaxBig returns the larger of a or b. A nil argument loses to a non-nil one.
func MaxBig(a, b *big.Int) *big.Int {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// IsPositive reports whether v is non-nil and > 0
func IsPositive(v *big.Int) bool {
	return v != nil && v.Sign() > 0
}
