package main

import (
	"os" // Exit codes

	"storefront/cmd/shopctl/commands" // CLI commands
)

func main() {
	// Cobra already printed the error
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
