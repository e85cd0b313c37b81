// Package main provides the entry point for the docground CLI.
package main

import (
	"os"

	"github.com/docground/docground/cmd/docground/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
