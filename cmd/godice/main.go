package main

import (
	"os"

	"github.com/sandrolain/godice/cmd/godice/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
