package bwt

import "github.com/sirupsen/logrus"

// Merge combines two BWT Records into the BWT of the concatenation of
// their source texts, using the iterative interleave fixpoint: repeatedly
// recompute which rows of the merged table are drawn from A versus B until
// two passes agree. separator is the byte used to delimit lines in both
// source texts; it is used to bound the number of passes by the longest
// line, and to carry the line-index offset convention for rows coming
// from b, which inherit lineIndex + lineCount(A) so line ordinals stay
// contiguous across the merge.
func Merge(a, b Record, separator byte) (Record, error) {
	if len(a.BWT) == 0 {
		return b, nil
	}
	if len(b.BWT) == 0 {
		return a, nil
	}

	n := len(a.BWT) + len(b.BWT)

	var counts [256]int
	for c := 0; c < 256; c++ {
		counts[c] = a.Counts[c] + b.Counts[c]
	}
	starts := prefixSums(counts)

	interleave := newInterleaveVector(n)
	for k := len(a.BWT); k < n; k++ {
		interleave.set(k, true)
	}

	longest := max(longestLineLen(a.LineIndex, a.Counts[separator]), longestLineLen(b.LineIndex, b.Counts[separator]))
	maxIterations := longest + 2
	iterations := 0
	for {
		iterations++
		if iterations > maxIterations {
			return Record{}, &ConvergenceError{Iterations: iterations, Bound: maxIterations}
		}

		next := newInterleaveVector(n)
		offsets := starts
		iA, iB := 0, 0
		for k := 0; k < n; k++ {
			if interleave.get(k) {
				c := b.BWT[iB]
				next.set(offsets[c], true)
				offsets[c]++
				iB++
			} else {
				c := a.BWT[iA]
				offsets[c]++
				iA++
			}
		}

		converged := next.equal(interleave)
		interleave = next
		logrus.WithFields(logrus.Fields{
			"iteration": iterations,
			"size":      n,
			"converged": converged,
		}).Debug("bwt: interleave fixpoint pass")
		if converged {
			break
		}
	}

	lineCountA := a.lineCount(separator)
	merged := Record{
		BWT:       make([]byte, n),
		LineIndex: make([]int, n),
		Counts:    counts,
	}
	iA, iB := 0, 0
	for k := 0; k < n; k++ {
		if interleave.get(k) {
			merged.BWT[k] = b.BWT[iB]
			merged.LineIndex[k] = b.LineIndex[iB] + lineCountA
			iB++
		} else {
			merged.BWT[k] = a.BWT[iA]
			merged.LineIndex[k] = a.LineIndex[iA]
			iA++
		}
	}
	return merged, nil
}

// prefixSums computes the BWT C[] "starts" array: starts[c] is the
// first row whose first rotation character is c.
func prefixSums(counts [256]int) [256]int {
	var starts [256]int
	sum := 0
	for c := 0; c < 256; c++ {
		starts[c] = sum
		sum += counts[c]
	}
	return starts
}

// longestLineLen returns the row count of the longest line represented in
// lineIndex, where lineCount is the number of distinct line ordinals (the
// separator's occurrence count). The interleave fixpoint is guaranteed to
// settle within longestLine+2 passes; anything beyond that bound means the
// input or the suffix-array oracle is corrupt.
func longestLineLen(lineIndex []int, lineCount int) int {
	if lineCount == 0 {
		return 0
	}
	tally := make([]int, lineCount)
	for _, line := range lineIndex {
		tally[line]++
	}
	longest := 0
	for _, n := range tally {
		if n > longest {
			longest = n
		}
	}
	return longest
}
