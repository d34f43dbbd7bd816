package bwt

import "github.com/bits-and-blooms/bitset"

// interleaveVector is the bit vector I used by the merge fixpoint:
// I[k]=0 means row k of the merged BWT is drawn from A, I[k]=1 means
// from B. It is a thin wrapper over bitset.BitSet, which gives a
// dense, word-packed ([]uint64), O(1) random-access layout; a
// byte-per-bit array would be correct but costly on long texts.
type interleaveVector struct {
	bits *bitset.BitSet
	n    int
}

func newInterleaveVector(n int) *interleaveVector {
	return &interleaveVector{bits: bitset.New(uint(n)), n: n}
}

func (v *interleaveVector) get(k int) bool {
	return v.bits.Test(uint(k))
}

func (v *interleaveVector) set(k int, val bool) {
	if val {
		v.bits.Set(uint(k))
	} else {
		v.bits.Clear(uint(k))
	}
}

func (v *interleaveVector) len() int { return v.n }

// equal reports whether two interleave vectors of the same length
// hold identical bits. Used for the fixpoint's convergence check:
// exact equality, no heuristic.
func (v *interleaveVector) equal(o *interleaveVector) bool {
	return v.bits.Equal(o.bits)
}
