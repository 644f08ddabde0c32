// Command letters maintains the Arabic letter-meaning store: merging
// supplementary meanings, adding missing letters, archiving snapshots and
// generating the letter engine initializer.
package main

import (
	"fmt"
	"os"

	"github.com/baserah/letters/cmd/letters/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
