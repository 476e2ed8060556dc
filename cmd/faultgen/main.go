// Command faultgen compiles fault declarations into Go error types.
package main

import (
	"os"

	"github.com/opencode-ai/faultgen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		cli.PrintError(err)
		os.Exit(cli.ExitCode(err))
	}
}
