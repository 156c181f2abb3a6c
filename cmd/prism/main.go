// prism renders source code as syntax-highlighted HTML using tree-sitter,
// building and caching grammar shared libraries on demand.
package main

import (
	"os"

	"github.com/corey/prism/cmd/prism/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
