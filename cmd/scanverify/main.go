package main

import (
	"os"

	"github.com/checkam/scanverifier/cmd/scanverify/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
