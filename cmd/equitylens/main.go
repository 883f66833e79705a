package main

import (
	"os"

	"github.com/equitylens/equitylens/cmd/equitylens/commands"
)

// main is the entry point for the EquityLens CLI.
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
