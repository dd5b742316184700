// Command recreg is the command-line front end of the record registry.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/recordregistry/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
