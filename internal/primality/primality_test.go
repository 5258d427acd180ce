package primality

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultWitnesses = []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37}

func isPrimeByTrialDivision(n uint64) bool {
	if n < 2 {
		return false
	}
	for f := uint64(2); f*f <= n; f++ {
		if n%f == 0 {
			return false
		}
	}
	return true
}

func TestIsProbablePrime(t *testing.T) {
	tester := NewTester(defaultWitnesses)

	t.Run("TrivialPath", func(t *testing.T) {
		assert.False(t, tester.IsProbablePrime(big.NewInt(-7)))
		assert.False(t, tester.IsProbablePrime(big.NewInt(0)))
		assert.False(t, tester.IsProbablePrime(big.NewInt(1)))
		assert.True(t, tester.IsProbablePrime(big.NewInt(2)))
		assert.True(t, tester.IsProbablePrime(big.NewInt(3)))
		assert.False(t, tester.IsProbablePrime(big.NewInt(4)))
	})

	t.Run("MatchesTrialDivision", func(t *testing.T) {
		for n := uint64(0); n <= 2000; n++ {
			want := isPrimeByTrialDivision(n)
			got := tester.IsProbablePrime(new(big.Int).SetUint64(n))
			require.Equal(t, want, got, "n=%d", n)
		}
	})

	t.Run("KnownLargeValues", func(t *testing.T) {
		cases := []struct {
			name  string
			value string
			prime bool
		}{
			{"TenThousandthPrime", "104729", true},
			{"Carmichael561", "561", false},
			// 2^47-1 = 2351 * 4513 * 13264529, the value Q(2).
			{"Mersenne47", "140737488355327", false},
			{"Mersenne61", "2305843009213693951", true},
			{"Mersenne127", "170141183460469231731687303715884105727", true},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				m, ok := new(big.Int).SetString(tc.value, 10)
				require.True(t, ok)
				assert.Equal(t, tc.prime, tester.IsProbablePrime(m))
			})
		}
	})

	t.Run("StrongPseudoprimeBase2", func(t *testing.T) {
		// 2047 = 23*89 fools base 2 alone; base 3 rejects it. This is the
		// fixed-witness trade-off the package documents.
		m := big.NewInt(2047)
		assert.True(t, NewTester([]uint64{2}).IsProbablePrime(m))
		assert.False(t, tester.IsProbablePrime(m))
	})

	t.Run("SkipsWitnessesAtOrAboveCandidate", func(t *testing.T) {
		// Every witness >= m is skipped; with none left the candidate
		// passes vacuously.
		small := NewTester([]uint64{7, 11})
		assert.True(t, small.IsProbablePrime(big.NewInt(5)))
	})

	t.Run("LargeEvenFastPath", func(t *testing.T) {
		m := new(big.Int).Lsh(big.NewInt(1), 100)
		assert.False(t, tester.IsProbablePrime(m))
	})
}

func TestClassify(t *testing.T) {
	tester := NewTester(defaultWitnesses)
	assert.Equal(t, VerdictPrime, tester.Classify(big.NewInt(104729)))
	assert.Equal(t, VerdictComposite, tester.Classify(big.NewInt(561)))
	assert.Equal(t, VerdictComposite, tester.Classify(big.NewInt(1)))
}

func TestDecompose(t *testing.T) {
	t.Run("OddBeyondThree", func(t *testing.T) {
		// 221 - 1 = 220 = 2^2 * 55.
		r, d, err := decompose(big.NewInt(221))
		require.NoError(t, err)
		assert.Equal(t, uint(2), r)
		assert.Equal(t, "55", d.String())
	})

	t.Run("RejectsOutsideDomain", func(t *testing.T) {
		for _, m := range []int64{-3, 0, 1, 4, 10} {
			_, _, err := decompose(big.NewInt(m))
			assert.Error(t, err, "m=%d", m)
		}
	})
}

func TestWitnessesCopied(t *testing.T) {
	in := []uint64{2, 3}
	tester := NewTester(in)
	in[0] = 99

	out := tester.Witnesses()
	require.Equal(t, []uint64{2, 3}, out)

	out[0] = 77
	assert.Equal(t, []uint64{2, 3}, tester.Witnesses())
}
