// Package primality classifies large integers with the Miller-Rabin test
// over a fixed witness set.
//
// The witness set is supplied by configuration, conventionally the first
// twelve primes {2,...,37}. That set gives deterministic answers only below
// about 3.3x10^24; for the ~400-digit values of Q(n) the result is a
// probable-prime verdict, not a certified proof. The test is deliberately
// not upgraded to a certified method (Baillie-PSW, ECPP) because that would
// change observable behavior on edge cases.
package primality

import (
	"math/big"

	"github.com/Ruqing1963/prime-polynomial-Q47/internal/numtheory"
)

var (
	bigOne   = big.NewInt(1)
	bigTwo   = big.NewInt(2)
	bigThree = big.NewInt(3)
)

// Verdict is the classification of a single candidate value.
type Verdict string

const (
	VerdictPrime     Verdict = "PRIME"
	VerdictComposite Verdict = "COMPOSITE"
)

// Tester runs Miller-Rabin rounds against its witness set.
type Tester struct {
	witnesses []uint64
}

// NewTester builds a tester over a copy of the given witness bases.
func NewTester(witnesses []uint64) *Tester {
	w := make([]uint64, len(witnesses))
	copy(w, witnesses)
	return &Tester{witnesses: w}
}

// Witnesses returns a copy of the configured witness bases.
func (t *Tester) Witnesses() []uint64 {
	w := make([]uint64, len(t.witnesses))
	copy(w, t.witnesses)
	return w
}

// IsProbablePrime reports whether m passes every applicable witness.
//
// Values below 2 are composite by convention, 2 and 3 are prime, even
// values are composite. Witnesses >= m are skipped. A single failing
// witness is conclusive compositeness; passing all of them means
// "probable prime" under the fixed set, see the package comment.
func (t *Tester) IsProbablePrime(m *big.Int) bool {
	if m.Cmp(bigTwo) < 0 {
		return false
	}
	if m.Cmp(bigThree) <= 0 {
		return true
	}
	if m.Bit(0) == 0 {
		return false
	}

	r, d, err := decompose(m)
	if err != nil {
		// m is odd and > 3 here, outside decompose's error domain.
		return false
	}

	mMinusOne := new(big.Int).Sub(m, bigOne)
	for _, w := range t.witnesses {
		a := new(big.Int).SetUint64(w)
		if a.Cmp(m) >= 0 {
			continue
		}
		if !witnessPasses(a, d, r, m, mMinusOne) {
			return false
		}
	}
	return true
}

// Classify maps the boolean test onto the reporting verdict.
func (t *Tester) Classify(m *big.Int) Verdict {
	if t.IsProbablePrime(m) {
		return VerdictPrime
	}
	return VerdictComposite
}

// decompose writes m-1 = 2^r * d with d odd, r >= 1. The caller must have
// dispatched m < 2, m in {2,3} and even m beforehand.
func decompose(m *big.Int) (r uint, d *big.Int, err error) {
	if m.Cmp(bigTwo) < 0 {
		return 0, nil, &numtheory.DomainError{Op: "decompose", Reason: "m below 2"}
	}
	if m.Bit(0) == 0 {
		return 0, nil, &numtheory.DomainError{Op: "decompose", Reason: "m even"}
	}
	d = new(big.Int).Sub(m, bigOne)
	for d.Bit(0) == 0 {
		d.Rsh(d, 1)
		r++
	}
	return r, d, nil
}

// witnessPasses runs one Miller-Rabin round for base a. It computes
// x = a^d mod m, accepts x in {1, m-1}, then squares up to r-1 times
// looking for m-1.
func witnessPasses(a, d *big.Int, r uint, m, mMinusOne *big.Int) bool {
	x, err := numtheory.ModPow(a, d, m)
	if err != nil {
		// m > 3 and d >= 1 here, outside ModPow's error domain.
		return false
	}
	if x.Cmp(bigOne) == 0 || x.Cmp(mMinusOne) == 0 {
		return true
	}
	for i := uint(0); i+1 < r; i++ {
		x.Mod(x.Mul(x, x), m)
		if x.Cmp(mMinusOne) == 0 {
			return true
		}
	}
	return false
}
