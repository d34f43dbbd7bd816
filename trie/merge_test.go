package trie

import "testing"

// tag is a concrete payload type for merge tests: a source-trie
// identifier paired with that key's ordinal in the source list.
type tag struct {
	TrieID  int
	Ordinal int
}

// mergeKeys builds two overlapping 10-key tries: one tagged (1,i), one
// tagged (2,i), with five keys shared between the two sets.
var mergeKeys = []string{
	"aardvark", "albatross", "badger", "camel", "dolphin",
	"egret", "falcon", "gibbon", "heron", "iguana",
	"jackal", "koala", "lemur", "marmot", "newt",
}

func buildTaggedTrie(t *testing.T, trieID int, keys []string) *Node[tag] {
	t.Helper()
	byteKeys := make([][]byte, len(keys))
	data := make([][]tag, len(keys))
	for i, k := range keys {
		byteKeys[i] = []byte(k)
		data[i] = []tag{{TrieID: trieID, Ordinal: i}}
	}
	root, err := Build(byteKeys, data)
	if err != nil {
		t.Fatalf("Build trie %d: %v", trieID, err)
	}
	return root
}

func TestMerge_OverlappingTaggedKeys(t *testing.T) {
	keys1 := mergeKeys[0:10] // aardvark .. iguana
	keys2 := mergeKeys[5:15] // egret .. newt (5-key overlap: egret..iguana)

	t1 := buildTaggedTrie(t, 1, keys1)
	t2 := buildTaggedTrie(t, 2, keys2)

	merged := Merge(t1, t2)

	expected := map[string][]tag{}
	for i, k := range keys1 {
		expected[k] = append(expected[k], tag{TrieID: 1, Ordinal: i})
	}
	for i, k := range keys2 {
		expected[k] = append(expected[k], tag{TrieID: 2, Ordinal: i})
	}

	for key, want := range expected {
		got := Query(merged, []byte(key))
		for _, w := range want {
			if !containsTag(got, w) {
				t.Errorf("Query(merged, %q) = %v, want to contain %v", key, got, w)
			}
		}
	}

	// the originals must remain untouched: querying t1 alone still
	// only ever surfaces trie-1 tags for keys unique to t1.
	onlyInT1 := Query(t1, []byte("aardvark"))
	for _, tg := range onlyInT1 {
		if tg.TrieID != 1 {
			t.Errorf("Query(t1, %q) = %v, leaked a tag from the other trie", "aardvark", onlyInT1)
		}
	}
}

func TestExtend_ConsumesSecondTrie(t *testing.T) {
	keys1 := mergeKeys[0:10]
	keys2 := mergeKeys[5:15]

	t1 := buildTaggedTrie(t, 1, keys1)
	t2 := buildTaggedTrie(t, 2, keys2)

	Extend(t1, t2)

	expected := map[string][]tag{}
	for i, k := range keys1 {
		expected[k] = append(expected[k], tag{TrieID: 1, Ordinal: i})
	}
	for i, k := range keys2 {
		expected[k] = append(expected[k], tag{TrieID: 2, Ordinal: i})
	}

	for key, want := range expected {
		got := Query(t1, []byte(key))
		for _, w := range want {
			if !containsTag(got, w) {
				t.Errorf("Query(t1, %q) after Extend = %v, want to contain %v", key, got, w)
			}
		}
	}
}

func containsTag(s []tag, v tag) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
