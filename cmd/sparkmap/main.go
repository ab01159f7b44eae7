package main

import (
	"os"

	"github.com/moolen/sparkmap/cmd/sparkmap/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
