// Package main provides the stablestore CLI tool.
//
// Usage:
//
//	stablestore --root DIR <command> [args]
//
// Commands:
//
//	put     - Durably store a value (argument, or stdin with "-")
//	get     - Print a stored value
//	rm      - Remove a key
//	sweep   - Remove temp files left behind by a crash
//	digest  - Print the digest and data file path of a key
//
// Configuration:
//
//	The storage root is taken from --root, or from STABLESTORE_ROOT.
//	The directory must already exist.
package main

import (
	"fmt"
	"os"

	"github.com/hupe1980/stablestore/cmd/stablestore/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
