// Package main is the entry point for the unpack CLI.
//
// All functionality lives in internal packages; this file only injects
// build metadata and hands control to the cobra command tree.
package main

import (
	"github.com/mmr-tortoise/unpack/internal/cli"
)

// version, commit, and date are set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
