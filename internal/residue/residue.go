// Package residue derives the forbidden residue classes of the polynomial
// family Q(n) = n^E - (n-1)^E modulo a small prime P.
//
// For a root of unity r != 1 with r^E = 1 (mod P), the class
// n = r * (r-1)^-1 (mod P) has n - 1 = (r-1)^-1 and therefore
// n/(n-1) = r, so n^E = (n-1)^E and Q(n) = 0 (mod P). These are exactly
// the residues n for which P divides Q(n), making a prime value at those
// classes impossible once Q(n) exceeds P. The derivation depends only on
// P and E, never on an observed sequence; classifying a sequence against
// it is a consistency check that must come out empty.
package residue

import (
	"fmt"
	"sort"

	"github.com/Ruqing1963/prime-polynomial-Q47/internal/numtheory"
	"github.com/Ruqing1963/prime-polynomial-Q47/internal/sequence"
)

// Verification outcomes of Classify.
const (
	VerificationPass = "PASS"
	VerificationFail = "FAIL"
)

// InvariantError reports sequence elements landing in forbidden residue
// classes. Either the sequence or the derivation is wrong; the condition
// is surfaced as an error, never tolerated.
type InvariantError struct {
	InForbidden int
	Classes     int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%d elements fall in one of %d forbidden residue classes", e.InForbidden, e.Classes)
}

// Field fixes the modulus P and exponent E of the derivation. P is
// subject to the same width constraint as numtheory.PowMod.
type Field struct {
	P uint64
	E uint64
}

// Mapping pairs a root of unity with the residue class it forbids.
type Mapping struct {
	Root      uint64 `json:"root"`
	Forbidden uint64 `json:"forbidden"`
}

// Classification is the outcome of checking a sequence against the
// forbidden set.
type Classification struct {
	Total            int    `json:"total"`
	ForbiddenClasses int    `json:"forbidden_classes"`
	InForbidden      int    `json:"in_forbidden"`
	Verification     string `json:"verification"`
}

// ClassCount is the population of one residue class.
type ClassCount struct {
	Class     uint64 `json:"class"`
	Count     int    `json:"count"`
	Forbidden bool   `json:"forbidden"`
}

// NewField returns the derivation field for modulus p and exponent e.
func NewField(p, e uint64) *Field {
	return &Field{P: p, E: e}
}

// Derivation searches r in [2, P) for roots of r^E = 1 (mod P) and maps
// each to its forbidden class r * (r-1)^-1 mod P, in root order.
func (f *Field) Derivation() []Mapping {
	var mappings []Mapping
	for r := uint64(2); r < f.P; r++ {
		if numtheory.PowMod(r, f.E, f.P) != 1 {
			continue
		}
		inv, err := numtheory.InvMod(r-1, f.P)
		if err != nil {
			// r-1 in [1, P-1) is never divisible by P.
			continue
		}
		mappings = append(mappings, Mapping{Root: r, Forbidden: r * inv % f.P})
	}
	return mappings
}

// Forbidden returns the sorted set of forbidden residue classes.
func (f *Field) Forbidden() []uint64 {
	derivation := f.Derivation()
	seen := make(map[uint64]bool, len(derivation))
	out := make([]uint64, 0, len(derivation))
	for _, m := range derivation {
		if seen[m.Forbidden] {
			continue
		}
		seen[m.Forbidden] = true
		out = append(out, m.Forbidden)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Classify reduces every sequence element mod P and counts hits in the
// forbidden set. Verification is PASS only when the count is exactly
// zero; any other outcome also returns an InvariantError.
func (f *Field) Classify(seq *sequence.Sequence) (Classification, error) {
	forbidden := f.Forbidden()
	inSet := make(map[uint64]bool, len(forbidden))
	for _, class := range forbidden {
		inSet[class] = true
	}

	hits := 0
	for _, n := range seq.Values() {
		if inSet[n%f.P] {
			hits++
		}
	}

	c := Classification{
		Total:            seq.Len(),
		ForbiddenClasses: len(forbidden),
		InForbidden:      hits,
		Verification:     VerificationPass,
	}
	if hits != 0 {
		c.Verification = VerificationFail
		return c, &InvariantError{InForbidden: hits, Classes: len(forbidden)}
	}
	return c, nil
}

// Distribution counts sequence elements per residue class, flagging the
// forbidden ones. All P classes are reported, including empty ones.
func (f *Field) Distribution(seq *sequence.Sequence) []ClassCount {
	counts := make([]int, f.P)
	for _, n := range seq.Values() {
		counts[n%f.P]++
	}

	inSet := make(map[uint64]bool)
	for _, class := range f.Forbidden() {
		inSet[class] = true
	}

	out := make([]ClassCount, 0, f.P)
	for class := uint64(0); class < f.P; class++ {
		out = append(out, ClassCount{
			Class:     class,
			Count:     counts[class],
			Forbidden: inSet[class],
		})
	}
	return out
}
