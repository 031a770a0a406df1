// Package main is the entry point for the vaultreg CLI tool.
package main

import (
	"os"

	"github.com/aidanlsb/vaultreg/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
