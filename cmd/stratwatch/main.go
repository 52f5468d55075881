package main

import (
	"os"

	"github.com/jayliu/stratwatch/cmd/stratwatch/commands"
)

// main is the entry point for the stratwatch CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
