package main

import (
	"os"

	"reportd/cmd/reportctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
