// Command planar compiles, validates, and solves constraint-based 2D
// sketches authored in CUE.
package main

import (
	"os"

	"github.com/planarcad/planar/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
