package bwt

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"
)

func ExampleMerge() {
	r1, _ := Build([]byte("ab\n"), '\n', StdSuffixArray)
	r2, _ := Build([]byte("cd\n"), '\n', StdSuffixArray)

	merged, _ := Merge(r1, r2, '\n')
	fmt.Printf("%q\n", merged.BWT)
	// Output: "db\na\nc"
}

// buildConcat is the reference builder used by the round-trip property:
// merge(bwt(t1), bwt(t2)) == bwt(t1 ++ t2).
func buildConcat(t *testing.T, t1, t2 []byte) Record {
	t.Helper()
	combined := append(append([]byte(nil), t1...), t2...)
	rec, err := Build(combined, '\n', StdSuffixArray)
	if err != nil {
		t.Fatalf("Build(concat): %v", err)
	}
	return rec
}

func assertMergeMatchesConcat(t *testing.T, t1, t2 []byte) Record {
	t.Helper()
	r1, err := Build(t1, '\n', StdSuffixArray)
	if err != nil {
		t.Fatalf("Build(t1): %v", err)
	}
	r2, err := Build(t2, '\n', StdSuffixArray)
	if err != nil {
		t.Fatalf("Build(t2): %v", err)
	}

	merged, err := Merge(r1, r2, '\n')
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	want := buildConcat(t, t1, t2)
	if !bytes.Equal(merged.BWT, want.BWT) {
		t.Fatalf("merge(bwt(t1),bwt(t2)) != bwt(t1++t2)\ngot:  %q\nwant: %q", merged.BWT, want.BWT)
	}
	if merged.Counts != want.Counts {
		t.Fatalf("merged counts mismatch: got %v want %v", merged.Counts, want.Counts)
	}
	return merged
}

func TestMerge_trivial(t *testing.T) {
	assertMergeMatchesConcat(t, []byte("ab\n"), []byte("cd\n"))
}

// TestMerge_worstCaseRepetitive checks that equal, repetitive inputs
// must still converge, and must not converge in a single (no-op)
// pass.
func TestMerge_worstCaseRepetitive(t *testing.T) {
	t1 := []byte("aaaa\n")
	t2 := []byte("aaaa\n")

	r1, err := Build(t1, '\n', StdSuffixArray)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := Build(t2, '\n', StdSuffixArray)
	if err != nil {
		t.Fatal(err)
	}

	n := len(r1.BWT) + len(r2.BWT)
	counts := [256]int{}
	for c := 0; c < 256; c++ {
		counts[c] = r1.Counts[c] + r2.Counts[c]
	}
	starts := prefixSums(counts)

	interleave := newInterleaveVector(n)
	for k := len(r1.BWT); k < n; k++ {
		interleave.set(k, true)
	}
	next, err := disklessInterleavePass(r1.BWT, r2.BWT, starts, interleave)
	if err != nil {
		t.Fatal(err)
	}
	if next.equal(interleave) {
		t.Fatal("interleave converged after a single pass on a repetitive input; expected iteration count > 1")
	}

	assertMergeMatchesConcat(t, t1, t2)
}

// disklessInterleavePass repeats the body of Merge's iteration step as a
// single pass, so TestMerge_worstCaseRepetitive can check the
// no-op-convergence property on the first pass alone.
func disklessInterleavePass(a, b []byte, starts [256]int, interleave *interleaveVector) (*interleaveVector, error) {
	n := interleave.len()
	next := newInterleaveVector(n)
	offsets := starts
	iA, iB := 0, 0
	for k := 0; k < n; k++ {
		if interleave.get(k) {
			c := b[iB]
			next.set(offsets[c], true)
			offsets[c]++
			iB++
		} else {
			c := a[iA]
			offsets[c]++
			iA++
		}
	}
	return next, nil
}

func TestMerge_emptySide(t *testing.T) {
	r, err := Build([]byte("abc\n"), '\n', StdSuffixArray)
	if err != nil {
		t.Fatal(err)
	}

	merged, err := Merge(r, Record{}, '\n')
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(merged.BWT, r.BWT) {
		t.Fatalf("merge with empty b should equal a: got %q want %q", merged.BWT, r.BWT)
	}

	merged, err = Merge(Record{}, r, '\n')
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(merged.BWT, r.BWT) {
		t.Fatalf("merge with empty a should equal b: got %q want %q", merged.BWT, r.BWT)
	}
}

func TestMerge_randomizedRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []byte("abcdefg")

	for trial := 0; trial < 20; trial++ {
		lineCount := 1 + rng.Intn(12)
		var lines [][]byte
		for i := 0; i < lineCount; i++ {
			lineLen := rng.Intn(8)
			line := make([]byte, lineLen)
			for j := range line {
				line[j] = alphabet[rng.Intn(len(alphabet))]
			}
			lines = append(lines, line)
		}

		a, b := RandomSplit(lines, rng)
		t1 := joinLines(a)
		t2 := joinLines(b)
		if len(t1) == 0 || len(t2) == 0 {
			continue
		}
		assertMergeMatchesConcat(t, t1, t2)
	}
}

func joinLines(lines [][]byte) []byte {
	var out []byte
	for _, l := range lines {
		out = append(out, l...)
		out = append(out, '\n')
	}
	return out
}
