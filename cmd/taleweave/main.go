// Command taleweave plays, renders, checks and serves published Twine stories.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/taleweave/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
