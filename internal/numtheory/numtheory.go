// Package numtheory provides the exact integer arithmetic the analysis
// engine is built on: arbitrary-precision powers, modular exponentiation
// and modular inverses over prime fields.
//
// Every operation is exact. Values of Q(n) = n^47 - (n-1)^47 reach several
// hundred decimal digits for n in the hundreds of millions, so nothing in
// this package ever rounds or truncates.
package numtheory

import (
	"fmt"
	"math/big"
)

var bigTwo = big.NewInt(2)

// DomainError indicates an operand outside the valid domain of an
// operation, e.g. a modular inverse of a multiple of the modulus. It
// signals a programming or data error, never a transient condition.
type DomainError struct {
	Op     string
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// Pow computes base^exp exactly. The result is a freshly allocated
// big.Int; operands in the hundreds of millions with exponents around 50
// produce results of roughly 400 decimal digits.
func Pow(base, exp uint64) *big.Int {
	b := new(big.Int).SetUint64(base)
	e := new(big.Int).SetUint64(exp)
	return b.Exp(b, e, nil)
}

// ModPow computes base^exp mod modulus without materializing the
// unreduced power. The result is in [0, modulus). Returns a DomainError
// for a non-positive modulus or a negative exponent.
func ModPow(base, exp, modulus *big.Int) (*big.Int, error) {
	if modulus.Sign() <= 0 {
		return nil, &DomainError{Op: "modpow", Reason: "modulus must be positive"}
	}
	if exp.Sign() < 0 {
		return nil, &DomainError{Op: "modpow", Reason: "exponent must be non-negative"}
	}
	return new(big.Int).Exp(base, exp, modulus), nil
}

// ModInverse computes the multiplicative inverse of a modulo the prime p
// via Fermat's little theorem: a^(p-2) mod p. Returns a DomainError when
// a is a multiple of p (no inverse exists) or p < 2. Primality of p is
// the caller's contract; for composite p the result is meaningless.
func ModInverse(a, p *big.Int) (*big.Int, error) {
	if p.Cmp(bigTwo) < 0 {
		return nil, &DomainError{Op: "modinverse", Reason: "modulus must be at least 2"}
	}
	r := new(big.Int).Mod(a, p)
	if r.Sign() == 0 {
		return nil, &DomainError{Op: "modinverse", Reason: fmt.Sprintf("%s has no inverse modulo %s", a, p)}
	}
	exp := new(big.Int).Sub(p, bigTwo)
	return r.Exp(r, exp, p), nil
}

// PowMod is the native-width fast path for base^exp mod modulus,
// square-and-multiply over uint64. The modulus must be positive and fit
// in 32 bits so intermediate products cannot overflow; the residue field
// work mod 283 stays far below that.
func PowMod(base, exp, modulus uint64) uint64 {
	if modulus == 1 {
		return 0
	}
	result := uint64(1)
	base %= modulus
	for exp > 0 {
		if exp&1 == 1 {
			result = result * base % modulus
		}
		base = base * base % modulus
		exp >>= 1
	}
	return result
}

// InvMod computes the inverse of a modulo the prime p in native width,
// again via a^(p-2) mod p. Same 32-bit modulus constraint as PowMod.
// Returns a DomainError when a is divisible by p.
func InvMod(a, p uint64) (uint64, error) {
	if p < 2 {
		return 0, &DomainError{Op: "invmod", Reason: "modulus must be at least 2"}
	}
	if a%p == 0 {
		return 0, &DomainError{Op: "invmod", Reason: fmt.Sprintf("%d has no inverse modulo %d", a, p)}
	}
	return PowMod(a, p-2, p), nil
}
