package main

import (
	"os"

	"github.com/petalworks/bloomcast/backend/cmd/bloomcast/commands"
)

// main is the entry point for the Bloomcast CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
