// Package stats computes range-bucketed density and inter-index gap
// statistics over the sequence, plus a Bateman-Horn style density fit.
package stats

import (
	"errors"
	"math"
	"sort"

	"github.com/Ruqing1963/prime-polynomial-Q47/internal/sequence"
)

// ErrEmptyInput is returned when a statistic is requested over an empty
// input; max and median over nothing are undefined.
var ErrEmptyInput = errors.New("empty input")

// Range is a half-open sampling interval [Low, High). Ranges are supplied
// by configuration and may overlap or leave gaps; no disjointness is
// enforced anywhere.
type Range struct {
	Low  uint64 `json:"low" yaml:"low" mapstructure:"low"`
	High uint64 `json:"high" yaml:"high" mapstructure:"high"`
}

// RangeDensity is the population of one sampling interval.
type RangeDensity struct {
	Low     uint64  `json:"low"`
	High    uint64  `json:"high"`
	Count   int     `json:"count"`
	Density float64 `json:"density"`
}

// Summary holds the gap statistics of one analysis run.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    uint64  `json:"max"`
	Ones   int     `json:"ones"`
}

// Fit is the Bateman-Horn style constant fitted from observed densities:
// density(n) ~ C / ((E-1) ln n), in the same scale as the input densities.
type Fit struct {
	C        float64 `json:"c"`
	Exponent uint64  `json:"exponent"`
}

// DensityByRange counts sequence elements per bucket via the rank index
// and scales counts to densities (count per unit interval times scale).
// Buckets with zero matching elements are omitted; bucket order is kept.
func DensityByRange(seq *sequence.Sequence, ranges []Range, scale float64) []RangeDensity {
	out := make([]RangeDensity, 0, len(ranges))
	for _, r := range ranges {
		count := seq.CountRange(r.Low, r.High)
		if count == 0 {
			continue
		}
		out = append(out, RangeDensity{
			Low:     r.Low,
			High:    r.High,
			Count:   count,
			Density: float64(count) / float64(r.High-r.Low) * scale,
		})
	}
	return out
}

// GapSummary computes count, mean, median, max and the number of gaps
// equal to 1. The median of an even-length list is the mean of the two
// central elements. The input slice is left untouched.
func GapSummary(gaps []uint64) (Summary, error) {
	if len(gaps) == 0 {
		return Summary{}, ErrEmptyInput
	}

	sorted := make([]uint64, len(gaps))
	copy(sorted, gaps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum float64
	ones := 0
	for _, g := range gaps {
		sum += float64(g)
		if g == 1 {
			ones++
		}
	}

	mid := len(sorted) / 2
	median := float64(sorted[mid])
	if len(sorted)%2 == 0 {
		median = (float64(sorted[mid-1]) + float64(sorted[mid])) / 2
	}

	return Summary{
		Count:  len(gaps),
		Mean:   sum / float64(len(gaps)),
		Median: median,
		Max:    sorted[len(sorted)-1],
		Ones:   ones,
	}, nil
}

// BatemanHornFit anchors the constant C on the first bucket with more
// than minCount elements: C = density * (E-1) * ln(center) with center
// the bucket midpoint. ErrEmptyInput when no bucket qualifies.
func BatemanHornFit(points []RangeDensity, exponent uint64, minCount int) (Fit, error) {
	for _, p := range points {
		if p.Count <= minCount {
			continue
		}
		center := float64(p.Low+p.High) / 2
		return Fit{
			C:        p.Density * float64(exponent-1) * math.Log(center),
			Exponent: exponent,
		}, nil
	}
	return Fit{}, ErrEmptyInput
}

// Predict returns the fitted density at n. Defined for n > 1.
func (f Fit) Predict(n float64) float64 {
	return f.C / (float64(f.Exponent-1) * math.Log(n))
}
