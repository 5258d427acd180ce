// Package qpoly evaluates the prime candidate polynomial family
// Q(n) = n^E - (n-1)^E for a configurable odd exponent E.
//
// For E = 47 and n near 3x10^8 the values run to roughly 400 decimal
// digits, so evaluation is exact over math/big throughout. The exponent
// is always supplied by the caller; nothing in this package hardcodes 47.
package qpoly

import (
	"math/big"

	"github.com/Ruqing1963/prime-polynomial-Q47/internal/numtheory"
)

// Polynomial is one member of the family, fixed by its exponent.
type Polynomial struct {
	Exponent uint64
}

// New returns the polynomial Q(n) = n^exponent - (n-1)^exponent.
func New(exponent uint64) *Polynomial {
	return &Polynomial{Exponent: exponent}
}

// Eval returns Q(n) exactly.
//
// Eval(0) = -(-1)^E, which is 1 for odd exponents and -1 for even ones.
// The unsigned parameter cannot express n-1 there, so the sign is applied
// directly instead.
func (p *Polynomial) Eval(n uint64) *big.Int {
	if n == 0 {
		if p.Exponent%2 == 1 {
			return big.NewInt(1)
		}
		return big.NewInt(-1)
	}
	v := numtheory.Pow(n, p.Exponent)
	return v.Sub(v, numtheory.Pow(n-1, p.Exponent))
}

// DigitCount reports the number of decimal digits in |v|.
func DigitCount(v *big.Int) int {
	s := v.Text(10)
	if v.Sign() < 0 {
		return len(s) - 1
	}
	return len(s)
}
