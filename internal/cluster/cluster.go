// Package cluster run-length encodes the index sequence into maximal runs
// of consecutive integers.
//
// A run is maximal: a block of 5 consecutive indices is one Run of length
// 5, never decomposed into overlapping shorter tuples. Callers wanting
// "at least k" counts aggregate Run.Length >= k after the fact, callers
// wanting "exactly k" filter Run.Length == k.
package cluster

import (
	"sort"

	"github.com/Ruqing1963/prime-polynomial-Q47/internal/sequence"
)

// Run is a maximal block of consecutive indices starting at Start.
type Run struct {
	Start  uint64 `json:"start"`
	Length int    `json:"length"`
}

// CumulativePoint is the number of qualifying runs among indices <= MaxN.
type CumulativePoint struct {
	MaxN  uint64 `json:"max_n"`
	Count int    `json:"count"`
}

// Runs scans the sequence once, left to right, and returns its maximal
// runs of length >= 2 in sequence order. Isolated indices are not
// clusters and are not reported.
func Runs(seq *sequence.Sequence) []Run {
	values := seq.Values()
	var runs []Run
	i := 0
	for i < len(values) {
		j := i + 1
		for j < len(values) && values[j] == values[j-1]+1 {
			j++
		}
		if j-i >= 2 {
			runs = append(runs, Run{Start: values[i], Length: j - i})
		}
		i = j
	}
	return runs
}

// TupleStarts returns the start of every maximal run whose length is
// exactly k. A longer run contributes nothing: a run of length 5 hides
// its interior 4-tuples. This mirrors the historical tuple finder and is
// kept deliberately.
func TupleStarts(seq *sequence.Sequence, k int) []uint64 {
	if k < 1 {
		return nil
	}
	values := seq.Values()
	var starts []uint64
	i := 0
	for i < len(values) {
		j := i + 1
		for j < len(values) && values[j] == values[j-1]+1 {
			j++
		}
		if j-i == k {
			starts = append(starts, values[i])
		}
		i = j
	}
	return starts
}

// LengthHistogram counts runs by length.
func LengthHistogram(runs []Run) map[int]int {
	hist := make(map[int]int, len(runs))
	for _, r := range runs {
		hist[r.Length]++
	}
	return hist
}

// CountTuplesUpTo counts maximal runs of length >= k among the indices
// <= maxN. The cutoff applies before run detection, so a run straddling
// maxN is truncated first. This is the aggregating counterpart of
// TupleStarts used for growth curves.
func CountTuplesUpTo(seq *sequence.Sequence, k int, maxN uint64) int {
	if k < 1 {
		return 0
	}
	values := seq.Values()
	n := sort.Search(len(values), func(i int) bool { return values[i] > maxN })
	count := 0
	i := 0
	for i < n {
		j := i + 1
		for j < n && values[j] == values[j-1]+1 {
			j++
		}
		if j-i >= k {
			count++
		}
		i = j
	}
	return count
}

// CumulativeTuples evaluates CountTuplesUpTo over a grid of cutoffs.
func CumulativeTuples(seq *sequence.Sequence, k int, grid []uint64) []CumulativePoint {
	points := make([]CumulativePoint, 0, len(grid))
	for _, maxN := range grid {
		points = append(points, CumulativePoint{MaxN: maxN, Count: CountTuplesUpTo(seq, k, maxN)})
	}
	return points
}
