package main

import (
	"os"

	"github.com/xmtp/vodozemac/cmd/vodozemac/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
