package trie

import (
	"math/rand"
	"testing"

	"golang.org/x/exp/slices"
)

// TestFalsePositiveRate_BoundedForExtraBits builds a trie over
// hex-packed keys, then asserts the measured false-positive rate stays
// small for the default extra-bits margin.
func TestFalsePositiveRate_BoundedForExtraBits(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	const n = 500
	hexKeys := make([]string, n)
	for i := range hexKeys {
		hexKeys[i] = randomHexString(rng, 16)
	}
	hexKeys = dedupSorted(hexKeys)

	keys, err := CompressHexStrings(hexKeys)
	if err != nil {
		t.Fatalf("CompressHexStrings: %v", err)
	}
	data := make([][]int, len(keys))
	for i := range data {
		data[i] = []int{i}
	}
	root, err := Build(keys, data)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var queries []FPQuery[int]
	for _, k := range keys {
		queries = append(queries, FPQuery[int]{Key: k, Exists: true})
	}
	for i := 0; i < len(keys); i++ {
		absent, err := HexToBytes(randomHexString(rng, 16))
		if err != nil {
			t.Fatalf("HexToBytes: %v", err)
		}
		queries = append(queries, FPQuery[int]{Key: absent, Exists: false})
	}

	rate := FalsePositiveRate(root, queries)
	if rate > 2.0 {
		t.Errorf("FalsePositiveRate = %f, want a small bounded rate for %d keys with %d extra bits", rate, len(keys), DefaultExtraBits)
	}
}

func randomHexString(rng *rand.Rand, length int) string {
	const alphabet = "0123456789abcdef"
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(buf)
}

func dedupSorted(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	out := ss[:0]
	for _, s := range ss {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return out
}
