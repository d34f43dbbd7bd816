package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// main is separated from the actual *cli.App to help with testing.
func main() {
	run(os.Args)
}

// run builds the app and executes it against args, logging and
// exiting nonzero on I/O or parse failure.
func run(args []string) {
	app := application()
	if err := app.Run(args); err != nil {
		logrus.WithError(err).Error("bwtrie: command failed")
		if exitErr, ok := err.(cli.ExitCoder); ok {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(2)
	}
}

// application defines the bwtrie command line utility: read lines,
// split into two halves, build two BWTs, merge them, build an
// FM-index, and answer one query.
func application() *cli.App {
	return &cli.App{
		Name:  "bwtrie",
		Usage: "merge BWTs of two text shards and answer a substring query",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "input-file",
				Usage: "path to the input text; reads stdin if omitted",
			},
			&cli.BoolFlag{
				Name:  "generate",
				Usage: "also write the two shard BWTs and the merged BWT to disk",
			},
			&cli.BoolFlag{
				Name:  "test-disk",
				Usage: "merge via the streaming disk-backed path and verify it matches the in-memory merge",
			},
			&cli.BoolFlag{
				Name:  "rebuild",
				Usage: "force regeneration of on-disk shard files instead of reusing ones from a prior --generate run",
			},
			&cli.BoolFlag{
				Name:  "print-bwt",
				Usage: "print the merged BWT bytes to stdout",
			},
			&cli.StringFlag{
				Name:  "query",
				Usage: "answer one substring query against the merged index",
			},
		},
		Action: runCommand,
	}
}
