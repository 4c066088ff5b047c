// debtscan locates technical-debt markers (TODO, FIXME, HACK, BUG, XXX and
// custom tags) across source trees, with syntax-tree verified precision and
// a fingerprint cache for cheap repeat scans.
package main

import (
	"os"

	"github.com/khoward/debtscan/cmd/debtscan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
