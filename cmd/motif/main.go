// Command motif finds structural patterns in directed property graphs.
package main

import (
	"os"

	"github.com/roach88/motif/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
