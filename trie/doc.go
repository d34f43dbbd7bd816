/*
Package trie implements a compact binary trie over bit-strings: bulk
build from a sorted key list, structural merge of two tries, and
approximate membership queries with no false negatives and bounded
false positives.

# LCP-truncated depth

Build does not walk each key to its full bit length. Instead each key's
trie depth is truncated to just enough bits to distinguish it from its
sorted neighbors, plus a small extra-bits margin (DefaultExtraBits) that
keeps keys separable across future merges. This keeps the trie shallower
than one built on full key lengths, at the cost of Query
returning a small number of false-positive candidates for keys that
were never inserted; it never misses a key that was.

Merge produces a fresh trie, recursively combining two tries' payload
bags and subtrees. Extend does the same but consumes its second
argument's subtrees by pointer splice wherever the receiver has no
corresponding child, avoiding a copy on that branch.
*/
package trie
