package bwt

import (
	"bytes"
	"fmt"

	"golang.org/x/exp/slices"
)

// Record is the triple a BWT builder produces: the transform bytes, the
// per-row line ordinal, and the per-byte occurrence tally.
type Record struct {
	// BWT is the transform column: BWT[i] = text[(SA[i]-1) mod n].
	BWT []byte
	// LineIndex[i] is the ordinal of the input line whose rotation
	// produced row i.
	LineIndex []int
	// Counts[c] is the number of occurrences of byte c in BWT.
	Counts [256]int
}

// SuffixArrayFunc computes a suffix array over text: a permutation of
// [0,len(text)) such that text[sa[i]:] are in ascending lexicographic
// order. It is an external oracle; Build does not validate that the
// function it's given actually returns a genuine permutation. A
// function whose entries all lie in [0,len(text)) but do not form a
// permutation surfaces as a ConvergenceError or malformed output; an
// entry outside that range makes Build panic with an index out of range.
type SuffixArrayFunc func(text []byte) []int64

// StdSuffixArray is the package's default SuffixArrayFunc: a direct
// sort of suffix slices (Build then reads off the BWT character
// preceding each suffix). It is O(n^2 log n) in the worst case and exists so
// the package is usable end to end; callers with large inputs should
// supply a linear-time oracle instead.
func StdSuffixArray(text []byte) []int64 {
	n := len(text)
	sa := make([]int64, n)
	for i := range sa {
		sa[i] = int64(i)
	}
	slices.SortFunc(sa, func(a, b int64) int {
		return bytes.Compare(text[a:], text[b:])
	})
	return sa
}

// Build constructs a BWT Record for text using the given suffix-array
// oracle. text must end with separator; no other assumption is made
// about text's content, and separator need only be the smallest byte
// actually present in text, not globally smallest.
func Build(text []byte, separator byte, sa SuffixArrayFunc) (Record, error) {
	n := len(text)
	if n == 0 {
		return Record{}, malformed("Build", fmt.Errorf("text is empty"))
	}
	if text[n-1] != separator {
		return Record{}, malformed("Build", fmt.Errorf("text does not end with separator %q", separator))
	}

	// sepCount[j] = number of separator bytes in text[0:j].
	sepCount := make([]int, n+1)
	for i := 0; i < n; i++ {
		sepCount[i+1] = sepCount[i]
		if text[i] == separator {
			sepCount[i+1]++
		}
	}

	suffixArray := sa(text)
	if len(suffixArray) != n {
		return Record{}, malformed("Build", fmt.Errorf("suffix array oracle returned %d entries for %d-byte text", len(suffixArray), n))
	}

	rec := Record{
		BWT:       make([]byte, n),
		LineIndex: make([]int, n),
	}
	for i, s := range suffixArray {
		pos := int(s) - 1
		if pos < 0 {
			pos = n - 1
		}
		rec.BWT[i] = text[pos]
		rec.LineIndex[i] = sepCount[pos]
		rec.Counts[rec.BWT[i]]++
	}
	return rec, nil
}

// lineCount returns the number of lines represented in the record,
// i.e. the number of separator bytes in the original text.
func (r Record) lineCount(separator byte) int {
	return r.Counts[separator]
}
