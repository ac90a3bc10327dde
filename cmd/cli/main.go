// Package main is the entry point for the datacore CLI.
package main

import (
	"os"

	"datacore/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
