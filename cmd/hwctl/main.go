// Package main is the entry point for the hwctl CLI.
//
// hwctl manages HelloWorld resources served by the helloworld-operator:
// it writes manifests, applies them, reports bootstrap progress per pod and
// can inject the payload into a pod by hand.
//
// For detailed usage information, run:
//
//	hwctl --help
package main

import (
	"fmt"
	"os"

	"github.com/ihor-mutel/helloworld-operator/cmd/hwctl/commands"
)

// Version information set at build time.
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
