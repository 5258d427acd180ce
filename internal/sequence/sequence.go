// Package sequence holds the sorted, deduplicated index sequence the
// analyzers operate on, together with a roaring bitmap index for membership
// and rank queries.
//
// A Sequence is immutable after construction. Loading accepts the plain
// one-number-per-line text format of the generated index lists: blank
// lines, #-comments and lines containing anything but decimal digits are
// skipped.
package sequence

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/klauspost/compress/zstd"
)

// Sequence is a sorted ascending run of unique uint64 indices.
type Sequence struct {
	values []uint64
	index  *roaring64.Bitmap
}

// FromValues normalizes arbitrary input into a Sequence. Duplicates are
// dropped and ordering is not required; the input slice is not retained.
func FromValues(values []uint64) *Sequence {
	bm := roaring64.New()
	for _, v := range values {
		bm.Add(v)
	}
	return &Sequence{values: bm.ToArray(), index: bm}
}

// FromReader parses one index per line. Lines are whitespace-trimmed;
// empty lines, lines starting with '#' and lines not composed entirely of
// decimal digits are skipped. Digit runs that overflow uint64 are skipped
// as well.
func FromReader(r io.Reader) (*Sequence, error) {
	bm := roaring64.New()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || !isDigits(line) {
			continue
		}
		v, err := strconv.ParseUint(line, 10, 64)
		if err != nil {
			continue
		}
		bm.Add(v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan input: %w", err)
	}
	return &Sequence{values: bm.ToArray(), index: bm}, nil
}

// FromFile loads a Sequence from path. Files with a .zst suffix are
// decompressed transparently.
func FromFile(path string) (*Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		defer dec.Close()
		r = dec
	}
	return FromReader(r)
}

// Values returns the ascending unique indices. The slice is shared with
// the Sequence; callers must not modify it.
func (s *Sequence) Values() []uint64 { return s.values }

// Len reports the number of indices.
func (s *Sequence) Len() int { return len(s.values) }

// Min returns the smallest index, 0 when the sequence is empty.
func (s *Sequence) Min() uint64 {
	if len(s.values) == 0 {
		return 0
	}
	return s.values[0]
}

// Max returns the largest index, 0 when the sequence is empty.
func (s *Sequence) Max() uint64 {
	if len(s.values) == 0 {
		return 0
	}
	return s.values[len(s.values)-1]
}

// Contains reports membership of v.
func (s *Sequence) Contains(v uint64) bool { return s.index.Contains(v) }

// CountRange counts indices in the half-open interval [lo, hi) using the
// bitmap rank index. Empty or inverted intervals count zero.
func (s *Sequence) CountRange(lo, hi uint64) int {
	if hi <= lo {
		return 0
	}
	upTo := s.index.Rank(hi - 1)
	if lo == 0 {
		return int(upTo)
	}
	return int(upTo - s.index.Rank(lo-1))
}

// Gaps returns the Len-1 differences between consecutive indices, nil for
// sequences shorter than 2.
func (s *Sequence) Gaps() []uint64 {
	if len(s.values) < 2 {
		return nil
	}
	gaps := make([]uint64, len(s.values)-1)
	for i := 1; i < len(s.values); i++ {
		gaps[i-1] = s.values[i] - s.values[i-1]
	}
	return gaps
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
