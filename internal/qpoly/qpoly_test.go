package qpoly

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	t.Run("Exponent47", func(t *testing.T) {
		p := New(47)

		// Q(2) = 2^47 - 1, the composite Mersenne number M47.
		assert.Equal(t, "140737488355327", p.Eval(2).String())
		assert.Equal(t, "1", p.Eval(1).String())
		assert.Equal(t, "1", p.Eval(0).String())
	})

	t.Run("Exponent3HandChecked", func(t *testing.T) {
		// n^3 - (n-1)^3 = 3n^2 - 3n + 1 is easy to verify by hand.
		p := New(3)
		cases := []struct {
			n    uint64
			want int64
		}{
			{0, 1},
			{1, 1},
			{2, 7},
			{3, 19},
			{4, 37},
			{5, 61},
			{6, 91},
		}
		for _, tc := range cases {
			assert.Equal(t, tc.want, p.Eval(tc.n).Int64(), "n=%d", tc.n)
		}
	})

	t.Run("EvenExponentAtZero", func(t *testing.T) {
		assert.Equal(t, int64(-1), New(4).Eval(0).Int64())
	})

	t.Run("LargestConfiguredInput", func(t *testing.T) {
		// The quadruplet verifier evaluates Q up to n = 3x10^8. The
		// difference n^47 - (n-1)^47 is about 47*n^46, which lands at
		// 392 decimal digits there.
		v := New(47).Eval(300_000_000)
		require.Equal(t, 1, v.Sign())
		assert.Equal(t, 392, DigitCount(v))
	})

	t.Run("StrictlyIncreasingForPositiveN", func(t *testing.T) {
		p := New(47)
		prev := p.Eval(1)
		for n := uint64(2); n <= 50; n++ {
			cur := p.Eval(n)
			assert.Equal(t, 1, cur.Cmp(prev), "n=%d", n)
			prev = cur
		}
	})
}

func TestDigitCount(t *testing.T) {
	cases := []struct {
		v    *big.Int
		want int
	}{
		{big.NewInt(0), 1},
		{big.NewInt(7), 1},
		{big.NewInt(10), 2},
		{big.NewInt(-999), 3},
		{new(big.Int).SetUint64(140737488355327), 15},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DigitCount(tc.v), "v=%s", tc.v)
	}
}
