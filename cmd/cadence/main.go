package main

import (
	"os"
	_ "time/tzdata"

	"github.com/lazypower/cadence/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
