// Command bundle compiles CUE bundle definitions into SELECT statements and
// runs them against a SQL database.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/bundle/internal/cli"
)

func main() {
	err := cli.Execute()
	if err != nil {
		// Commands report their own failures through the formatter; only
		// errors raised before a command ran still need printing.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) || !exitErr.Reported {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	os.Exit(cli.GetExitCode(err))
}
