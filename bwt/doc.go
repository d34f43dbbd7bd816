/*
Package bwt builds and merges Burrows-Wheeler transforms of text
collections, and answers substring queries against them through a
compact FM-index.

# Merging BWTs without a full suffix array

Given the BWTs of two texts, Merge produces the BWT of their
concatenation without ever building a suffix array over the combined
text. It does this by repeatedly refining an interleave bit vector: bit
k says whether row k of the eventual merged BWT is drawn from A or from
B. Each refinement pass is one step of the standard LF mapping; the
process is a fixpoint that converges once every row is placed relative
to rows that agree on arbitrarily long prefixes, which for texts ending
in a unique separator happens within longestLine+1 passes.

MergeDisk performs the identical fixpoint but keeps both input BWTs on
disk and streams them through fixed-size buffers, so inputs larger than
memory can still be merged; only the interleave vector itself (one bit
per row) stays resident.

NewFMIndex builds rank/occurrence checkpoints over a Record's BWT bytes
so MatchLines can answer substring queries by backward search (the
standard BWT LF-mapping walk), reporting the ordinal of every input
line containing the pattern.
*/
package bwt
