package main

import (
	"os"

	"github.com/go-tether/tether/cmd/tether/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
