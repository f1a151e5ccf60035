// Package main is the entry point for the rkeup CLI.
//
// rkeup resolves which RKE release is compatible with a running cluster's
// control-plane version and drives upgrades and etcd snapshot operations
// through that release's binary.
//
// Commands: resolve, upgrade, snapshot, version.
//
// For detailed usage information, run:
//
//	rkeup --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/rkeup/cmd/rkeup/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
