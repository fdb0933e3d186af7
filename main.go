// Package main is the entry point for the cuke-bridge CLI.
//
// The stock binary has no step definitions: it counts, dry-runs and reports
// undefined steps. Suites with steps build their own main around
// cmd.NewRootCmd(cmd.WithGlue(...)).
package main

import (
	"fmt"
	"os"

	"cuke-bridge/cmd"
)

// Version information, injected at build time.
var Version = "dev"

func main() {
	rootCmd := cmd.NewRootCmd()
	rootCmd.Version = Version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
