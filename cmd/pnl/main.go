package main

import (
	"os"

	"github.com/rustyeddy/pnl/cmd/pnl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
