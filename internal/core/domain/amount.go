package domain

import (
	"fmt"
	"math/big"
)

// ParseAmount reads a non-negative base-10 integer in minor currency units.
func ParseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("amount %q: %w", s, ErrInvalidAmount)
	}
	return v, nil
}

func ValidAmount(v *big.Int) bool {
	return v != nil && v.Sign() >= 0
}
