// Command philo runs the dining philosophers simulation.
package main

import (
	"os"

	"github.com/erkkaervice/philosophers/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
