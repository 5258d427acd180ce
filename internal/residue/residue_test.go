package residue

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ruqing1963/prime-polynomial-Q47/internal/qpoly"
	"github.com/Ruqing1963/prime-polynomial-Q47/internal/sequence"
)

func TestDerivationSmallFieldByHand(t *testing.T) {
	// x^3 = 1 (mod 7) has roots {1, 2, 4}. Root 2 forbids 2/(2-1) = 2,
	// root 4 forbids 4/(4-1) = 4*5 = 20 = 6 (mod 7).
	f := NewField(7, 3)

	derivation := f.Derivation()
	require.Equal(t, []Mapping{
		{Root: 2, Forbidden: 2},
		{Root: 4, Forbidden: 6},
	}, derivation)

	assert.Equal(t, []uint64{2, 6}, f.Forbidden())
}

func TestForbiddenMod283(t *testing.T) {
	f := NewField(283, 47)
	forbidden := f.Forbidden()

	t.Run("FortySixClasses", func(t *testing.T) {
		// The 47th roots of unity mod 283 form a subgroup of order 47;
		// dropping r = 1 leaves 46 roots and 46 distinct classes.
		require.Len(t, f.Derivation(), 46)
		require.Len(t, forbidden, 46)
		for i := 1; i < len(forbidden); i++ {
			assert.Less(t, forbidden[i-1], forbidden[i])
		}
	})

	t.Run("ExactlyTheZeroSetOfQ", func(t *testing.T) {
		inSet := make(map[uint64]bool)
		for _, class := range forbidden {
			inSet[class] = true
		}

		pol := qpoly.New(47)
		p := big.NewInt(283)
		for n := uint64(0); n < 283; n++ {
			rem := new(big.Int).Mod(pol.Eval(n), p)
			divides := rem.Sign() == 0
			assert.Equal(t, divides, inSet[n], "n=%d", n)
		}
	})
}

func TestClassify(t *testing.T) {
	f := NewField(283, 47)

	t.Run("CleanSequencePasses", func(t *testing.T) {
		// Keep only indices whose class is provably safe.
		inSet := make(map[uint64]bool)
		for _, class := range f.Forbidden() {
			inSet[class] = true
		}
		var clean []uint64
		for n := uint64(1); n <= 600; n++ {
			if !inSet[n%283] {
				clean = append(clean, n)
			}
		}

		c, err := f.Classify(sequence.FromValues(clean))
		require.NoError(t, err)
		assert.Equal(t, len(clean), c.Total)
		assert.Equal(t, 46, c.ForbiddenClasses)
		assert.Equal(t, 0, c.InForbidden)
		assert.Equal(t, VerificationPass, c.Verification)
	})

	t.Run("ViolationFailsAndErrors", func(t *testing.T) {
		bad := f.Forbidden()[0]
		seq := sequence.FromValues([]uint64{1, 2, bad, bad + 283})

		c, err := f.Classify(seq)
		require.Error(t, err)

		var ierr *InvariantError
		require.ErrorAs(t, err, &ierr)
		assert.Equal(t, 2, ierr.InForbidden)
		assert.Equal(t, 46, ierr.Classes)

		assert.Equal(t, 4, c.Total)
		assert.Equal(t, 2, c.InForbidden)
		assert.Equal(t, VerificationFail, c.Verification)
	})

	t.Run("EmptySequencePasses", func(t *testing.T) {
		c, err := f.Classify(sequence.FromValues(nil))
		require.NoError(t, err)
		assert.Equal(t, 0, c.Total)
		assert.Equal(t, VerificationPass, c.Verification)
	})
}

func TestDistribution(t *testing.T) {
	f := NewField(7, 3)
	seq := sequence.FromValues([]uint64{1, 8, 15, 3, 4})

	dist := f.Distribution(seq)
	require.Len(t, dist, 7)

	total := 0
	for _, cc := range dist {
		total += cc.Count
	}
	assert.Equal(t, seq.Len(), total)

	// 1, 8 and 15 share class 1; classes 2 and 6 carry the forbidden flag.
	assert.Equal(t, ClassCount{Class: 1, Count: 3, Forbidden: false}, dist[1])
	assert.Equal(t, ClassCount{Class: 3, Count: 1, Forbidden: false}, dist[3])
	assert.Equal(t, ClassCount{Class: 4, Count: 1, Forbidden: false}, dist[4])
	assert.True(t, dist[2].Forbidden)
	assert.True(t, dist[6].Forbidden)
	assert.Equal(t, 0, dist[0].Count)
}
