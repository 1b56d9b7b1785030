package main

import (
	"os"

	"github.com/wonny/fundranker/cmd/fundranker/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
