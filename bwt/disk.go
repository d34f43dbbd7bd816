package bwt

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// DefaultBufferSize is the default buffered-read/write window for the
// on-disk merge path: large enough to amortize syscall overhead on
// multi-gigabyte shards without holding them in memory.
const DefaultBufferSize = 1 << 20

// DiskSet names the P.bwt / P.index / P.counts file triple under a
// shared path prefix.
type DiskSet struct {
	Prefix string
}

func (d DiskSet) bwtPath() string    { return d.Prefix + ".bwt" }
func (d DiskSet) indexPath() string  { return d.Prefix + ".index" }
func (d DiskSet) countsPath() string { return d.Prefix + ".counts" }

// WriteRecord writes a Record to the three files named by d.
func (d DiskSet) WriteRecord(r Record) error {
	if err := os.WriteFile(d.bwtPath(), r.BWT, 0o644); err != nil {
		return ioError("WriteRecord", err)
	}
	idxFile, err := os.Create(d.indexPath())
	if err != nil {
		return ioError("WriteRecord", err)
	}
	defer idxFile.Close()
	w := bufio.NewWriterSize(idxFile, DefaultBufferSize)
	for _, v := range r.LineIndex {
		if _, err := fmt.Fprintf(w, "%d\n", v); err != nil {
			return ioError("WriteRecord", err)
		}
	}
	if err := w.Flush(); err != nil {
		return ioError("WriteRecord", err)
	}
	return writeCountsFile(d.countsPath(), r.Counts)
}

// ReadRecord reads back a Record previously written by WriteRecord.
func (d DiskSet) ReadRecord() (Record, error) {
	bwtBytes, err := os.ReadFile(d.bwtPath())
	if err != nil {
		return Record{}, ioError("ReadRecord", err)
	}

	idxFile, err := os.Open(d.indexPath())
	if err != nil {
		return Record{}, ioError("ReadRecord", err)
	}
	defer idxFile.Close()
	lineIndex := make([]int, 0, len(bwtBytes))
	scanner := bufio.NewScanner(idxFile)
	scanner.Buffer(make([]byte, DefaultBufferSize), DefaultBufferSize)
	for scanner.Scan() {
		v, err := strconv.Atoi(scanner.Text())
		if err != nil {
			return Record{}, malformed("ReadRecord", err)
		}
		lineIndex = append(lineIndex, v)
	}
	if err := scanner.Err(); err != nil {
		return Record{}, ioError("ReadRecord", err)
	}
	if len(lineIndex) != len(bwtBytes) {
		return Record{}, malformed("ReadRecord", fmt.Errorf("%s: %d bwt bytes but %d index lines", d.Prefix, len(bwtBytes), len(lineIndex)))
	}

	counts, err := readCountsFile(d.countsPath())
	if err != nil {
		return Record{}, err
	}

	return Record{BWT: bwtBytes, LineIndex: lineIndex, Counts: counts}, nil
}

func writeCountsFile(path string, counts [256]int) error {
	f, err := os.Create(path)
	if err != nil {
		return ioError("writeCountsFile", err)
	}
	defer f.Close()
	w := bufio.NewWriterSize(f, DefaultBufferSize)
	for c := 0; c < 256; c++ {
		if _, err := fmt.Fprintf(w, "%d\n", counts[c]); err != nil {
			return ioError("writeCountsFile", err)
		}
	}
	return ioError("writeCountsFile", w.Flush())
}

func readCountsFile(path string) ([256]int, error) {
	var counts [256]int
	f, err := os.Open(path)
	if err != nil {
		return counts, ioError("readCountsFile", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, DefaultBufferSize), DefaultBufferSize)
	for c := 0; c < 256; c++ {
		if !scanner.Scan() {
			return counts, malformed("readCountsFile", fmt.Errorf("%s: expected 256 lines, found %d", path, c))
		}
		v, err := strconv.Atoi(scanner.Text())
		if err != nil {
			return counts, malformed("readCountsFile", fmt.Errorf("%s: line %d: %w", path, c, err))
		}
		counts[c] = v
	}
	return counts, nil
}

// RandomSplit deterministically (given rng) splits lines into two
// roughly-even shards, for building the pair of BWTs a caller will
// merge. Used by this package's own tests and available to callers
// that want a quick way to shard a line set for exercising Merge or
// MergeDisk.
func RandomSplit(lines [][]byte, rng *rand.Rand) (a, b [][]byte) {
	order := make([]int, len(lines))
	for i := range order {
		order[i] = i
	}
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	half := len(order) / 2
	aIdx := append([]int(nil), order[:half]...)
	bIdx := append([]int(nil), order[half:]...)
	slices.Sort(aIdx)
	slices.Sort(bIdx)

	for _, i := range aIdx {
		a = append(a, lines[i])
	}
	for _, i := range bIdx {
		b = append(b, lines[i])
	}
	return a, b
}

// DiskMergeOptions tunes the streaming merger.
type DiskMergeOptions struct {
	// BufferSize is the buffered read/write window (1 MiB default).
	BufferSize int
}

func (o DiskMergeOptions) bufferSize() int {
	if o.BufferSize > 0 {
		return o.BufferSize
	}
	return DefaultBufferSize
}

// MergeDisk merges two on-disk BWTs into a third, streaming both
// inputs through buffered readers instead of holding them in memory.
// Only the interleave vector (one bit per row) and the per-byte
// offsets table are resident. ctx is checked between iterations and
// at buffer boundaries; a cancelled context aborts the merge and
// leaves out's files in an indeterminate state, which the caller must
// treat as garbage rather than a partial result.
func MergeDisk(ctx context.Context, a, b, out DiskSet, separator byte, opts DiskMergeOptions) error {
	bufSize := opts.bufferSize()

	countsA, err := readCountsFile(a.countsPath())
	if err != nil {
		return err
	}
	countsB, err := readCountsFile(b.countsPath())
	if err != nil {
		return err
	}

	var counts [256]int
	for c := 0; c < 256; c++ {
		counts[c] = countsA[c] + countsB[c]
	}
	starts := prefixSums(counts)
	lineCountA := countsA[separator]

	aInfo, err := os.Stat(a.bwtPath())
	if err != nil {
		return ioError("MergeDisk", err)
	}
	bInfo, err := os.Stat(b.bwtPath())
	if err != nil {
		return ioError("MergeDisk", err)
	}
	aLen := int(aInfo.Size())
	bLen := int(bInfo.Size())
	n := aLen + bLen

	interleave := newInterleaveVector(n)
	for k := aLen; k < n; k++ {
		interleave.set(k, true)
	}

	longestA, err := longestLineFromIndexFile(a.indexPath(), bufSize)
	if err != nil {
		return err
	}
	longestB, err := longestLineFromIndexFile(b.indexPath(), bufSize)
	if err != nil {
		return err
	}
	maxIterations := max(longestA, longestB) + 2
	iterations := 0
	for {
		select {
		case <-ctx.Done():
			return ioError("MergeDisk", ctx.Err())
		default:
		}

		iterations++
		if iterations > maxIterations {
			return &ConvergenceError{Iterations: iterations, Bound: maxIterations}
		}

		next, err := diskInterleavePass(ctx, a.bwtPath(), b.bwtPath(), bufSize, starts, interleave)
		if err != nil {
			return err
		}

		converged := next.equal(interleave)
		interleave = next
		logrus.WithFields(logrus.Fields{
			"iteration": iterations,
			"size":      n,
			"converged": converged,
		}).Debug("bwt: disk interleave fixpoint pass")
		if converged {
			break
		}
	}

	return diskWriteMerge(a, b, out, interleave, counts, lineCountA, bufSize)
}

func diskInterleavePass(ctx context.Context, aPath, bPath string, bufSize int, starts [256]int, interleave *interleaveVector) (*interleaveVector, error) {
	aFile, err := os.Open(aPath)
	if err != nil {
		return nil, ioError("MergeDisk", err)
	}
	defer aFile.Close()
	bFile, err := os.Open(bPath)
	if err != nil {
		return nil, ioError("MergeDisk", err)
	}
	defer bFile.Close()

	aReader := bufio.NewReaderSize(aFile, bufSize)
	bReader := bufio.NewReaderSize(bFile, bufSize)

	n := interleave.len()
	next := newInterleaveVector(n)
	offsets := starts
	for k := 0; k < n; k++ {
		if k%bufSize == 0 {
			select {
			case <-ctx.Done():
				return nil, ioError("MergeDisk", ctx.Err())
			default:
			}
		}
		if interleave.get(k) {
			c, err := bReader.ReadByte()
			if err != nil {
				return nil, ioError("MergeDisk", err)
			}
			next.set(offsets[c], true)
			offsets[c]++
		} else {
			c, err := aReader.ReadByte()
			if err != nil {
				return nil, ioError("MergeDisk", err)
			}
			offsets[c]++
		}
	}
	return next, nil
}

func diskWriteMerge(a, b, out DiskSet, interleave *interleaveVector, counts [256]int, lineCountA, bufSize int) error {
	aBWT, err := os.Open(a.bwtPath())
	if err != nil {
		return ioError("MergeDisk", err)
	}
	defer aBWT.Close()
	bBWT, err := os.Open(b.bwtPath())
	if err != nil {
		return ioError("MergeDisk", err)
	}
	defer bBWT.Close()
	aBWTReader := bufio.NewReaderSize(aBWT, bufSize)
	bBWTReader := bufio.NewReaderSize(bBWT, bufSize)

	aIdx, err := os.Open(a.indexPath())
	if err != nil {
		return ioError("MergeDisk", err)
	}
	defer aIdx.Close()
	bIdx, err := os.Open(b.indexPath())
	if err != nil {
		return ioError("MergeDisk", err)
	}
	defer bIdx.Close()
	aIdxScanner := newLineScanner(aIdx, bufSize)
	bIdxScanner := newLineScanner(bIdx, bufSize)

	outBWT, err := os.Create(out.bwtPath())
	if err != nil {
		return ioError("MergeDisk", err)
	}
	defer outBWT.Close()
	outIdx, err := os.Create(out.indexPath())
	if err != nil {
		return ioError("MergeDisk", err)
	}
	defer outIdx.Close()
	bwtWriter := bufio.NewWriterSize(outBWT, bufSize)
	idxWriter := bufio.NewWriterSize(outIdx, bufSize)

	n := interleave.len()
	for k := 0; k < n; k++ {
		if interleave.get(k) {
			c, err := bBWTReader.ReadByte()
			if err != nil {
				return ioError("MergeDisk", err)
			}
			if err := bwtWriter.WriteByte(c); err != nil {
				return ioError("MergeDisk", err)
			}
			line, err := nextIndexLine(bIdxScanner)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(idxWriter, "%d\n", line+lineCountA); err != nil {
				return ioError("MergeDisk", err)
			}
		} else {
			c, err := aBWTReader.ReadByte()
			if err != nil {
				return ioError("MergeDisk", err)
			}
			if err := bwtWriter.WriteByte(c); err != nil {
				return ioError("MergeDisk", err)
			}
			line, err := nextIndexLine(aIdxScanner)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(idxWriter, "%d\n", line); err != nil {
				return ioError("MergeDisk", err)
			}
		}
	}

	if err := bwtWriter.Flush(); err != nil {
		return ioError("MergeDisk", err)
	}
	if err := idxWriter.Flush(); err != nil {
		return ioError("MergeDisk", err)
	}
	return writeCountsFile(out.countsPath(), counts)
}

func newLineScanner(f *os.File, bufSize int) *bufio.Scanner {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, bufSize), bufSize)
	return scanner
}

// longestLineFromIndexFile scans an .index file and returns the row count
// of its longest line, without holding the whole file in memory.
func longestLineFromIndexFile(path string, bufSize int) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, ioError("MergeDisk", err)
	}
	defer f.Close()

	scanner := newLineScanner(f, bufSize)
	tally := make(map[int]int)
	longest := 0
	for scanner.Scan() {
		v, err := strconv.Atoi(scanner.Text())
		if err != nil {
			return 0, malformed("MergeDisk", err)
		}
		tally[v]++
		if tally[v] > longest {
			longest = tally[v]
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, ioError("MergeDisk", err)
	}
	return longest, nil
}

func nextIndexLine(scanner *bufio.Scanner) (int, error) {
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return 0, ioError("MergeDisk", err)
		}
		return 0, malformed("MergeDisk", fmt.Errorf("index file exhausted early"))
	}
	v, err := strconv.Atoi(scanner.Text())
	if err != nil {
		return 0, malformed("MergeDisk", err)
	}
	return v, nil
}
