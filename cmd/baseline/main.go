// Command baseline runs rendering scripts as image regression tests.
package main

import (
	"os"

	"github.com/roach88/baseline/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
