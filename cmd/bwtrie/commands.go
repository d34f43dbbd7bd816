package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/seqindex/bwtrie/bwt"
)

// separator is the line delimiter used throughout the CLI; it doubles
// as the smallest byte in the alphabet.
const separator = '\n'

// runCommand implements the CLI's single action: read lines, split
// into two halves, build two BWTs, merge them, build an FM-index, and
// answer one query.
func runCommand(c *cli.Context) error {
	lines, err := readLines(c.String("input-file"))
	if err != nil {
		return cli.Exit(fmt.Errorf("bwtrie: reading input: %w", err), 2)
	}
	if len(lines) == 0 {
		return cli.Exit(fmt.Errorf("bwtrie: input is empty"), 1)
	}

	half := len(lines) / 2
	linesA, linesB := lines[:half], lines[half:]
	if len(linesA) == 0 || len(linesB) == 0 {
		return cli.Exit(fmt.Errorf("bwtrie: need at least two lines to split into two shards"), 1)
	}

	outDir := generateDir(c.String("input-file"))
	shardA := bwt.DiskSet{Prefix: filepath.Join(outDir, "a")}
	shardB := bwt.DiskSet{Prefix: filepath.Join(outDir, "b")}
	mergedOut := bwt.DiskSet{Prefix: filepath.Join(outDir, "merged")}

	recA, recB, err := shardRecords(c, shardA, shardB, linesA, linesB)
	if err != nil {
		return cli.Exit(err, 2)
	}

	merged, err := bwt.Merge(recA, recB, separator)
	if err != nil {
		return cli.Exit(fmt.Errorf("bwtrie: merge: %w", err), 2)
	}

	if c.Bool("test-disk") {
		if err := verifyDiskMerge(c, shardA, shardB, mergedOut, merged); err != nil {
			return cli.Exit(fmt.Errorf("bwtrie: disk merge: %w", err), 2)
		}
	}

	if c.Bool("generate") {
		if err := mergedOut.WriteRecord(merged); err != nil {
			return cli.Exit(fmt.Errorf("bwtrie: writing merged shard: %w", err), 2)
		}
		logrus.WithField("dir", outDir).Info("bwtrie: wrote shard and merged BWT files")
	}

	if c.Bool("print-bwt") {
		fmt.Fprintf(c.App.Writer, "%s\n", merged.BWT)
	}

	if query := c.String("query"); query != "" {
		fm := bwt.NewFMIndex(merged)
		for _, line := range fm.MatchLines([]byte(query)) {
			fmt.Fprintln(c.App.Writer, line)
		}
	}

	return nil
}

// shardRecords builds the two shard BWT Records, either from scratch
// or by reusing files a prior --generate run already wrote (unless
// --rebuild forces regeneration).
func shardRecords(c *cli.Context, shardA, shardB bwt.DiskSet, linesA, linesB [][]byte) (bwt.Record, bwt.Record, error) {
	if c.Bool("generate") && !c.Bool("rebuild") && diskSetExists(shardA) && diskSetExists(shardB) {
		recA, err := shardA.ReadRecord()
		if err != nil {
			return bwt.Record{}, bwt.Record{}, fmt.Errorf("reading existing shard a: %w", err)
		}
		recB, err := shardB.ReadRecord()
		if err != nil {
			return bwt.Record{}, bwt.Record{}, fmt.Errorf("reading existing shard b: %w", err)
		}
		logrus.Info("bwtrie: reusing shard files from a prior --generate run")
		return recA, recB, nil
	}

	recA, err := bwt.Build(joinLines(linesA), separator, bwt.StdSuffixArray)
	if err != nil {
		return bwt.Record{}, bwt.Record{}, fmt.Errorf("building shard a: %w", err)
	}
	recB, err := bwt.Build(joinLines(linesB), separator, bwt.StdSuffixArray)
	if err != nil {
		return bwt.Record{}, bwt.Record{}, fmt.Errorf("building shard b: %w", err)
	}

	if c.Bool("generate") || c.Bool("test-disk") {
		if err := os.MkdirAll(filepath.Dir(shardA.Prefix), 0o755); err != nil {
			return bwt.Record{}, bwt.Record{}, fmt.Errorf("creating output dir: %w", err)
		}
		if err := shardA.WriteRecord(recA); err != nil {
			return bwt.Record{}, bwt.Record{}, fmt.Errorf("writing shard a: %w", err)
		}
		if err := shardB.WriteRecord(recB); err != nil {
			return bwt.Record{}, bwt.Record{}, fmt.Errorf("writing shard b: %w", err)
		}
	}
	return recA, recB, nil
}

// verifyDiskMerge runs the streaming merger over shardA/shardB and
// asserts it agrees byte-for-byte with the in-memory merge already
// computed.
func verifyDiskMerge(c *cli.Context, shardA, shardB, mergedOut bwt.DiskSet, wantMerged bwt.Record) error {
	if err := bwt.MergeDisk(c.Context, shardA, shardB, mergedOut, separator, bwt.DiskMergeOptions{}); err != nil {
		return err
	}
	gotMerged, err := mergedOut.ReadRecord()
	if err != nil {
		return err
	}
	if string(gotMerged.BWT) != string(wantMerged.BWT) {
		return fmt.Errorf("streaming merge disagrees with in-memory merge")
	}
	logrus.Info("bwtrie: streaming merge matches in-memory merge")
	return nil
}

func readLines(path string) ([][]byte, error) {
	var r io.Reader
	if path == "" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var lines [][]byte
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1<<20), 1<<20)
	for scanner.Scan() {
		line := append([]byte(nil), scanner.Bytes()...)
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func joinLines(lines [][]byte) []byte {
	var out []byte
	for _, l := range lines {
		out = append(out, l...)
		out = append(out, separator)
	}
	return out
}

func generateDir(inputFile string) string {
	if inputFile == "" {
		return "bwtrie-out"
	}
	return inputFile + ".bwtrie-out"
}

func diskSetExists(d bwt.DiskSet) bool {
	_, err := os.Stat(d.Prefix + ".bwt")
	return err == nil
}
