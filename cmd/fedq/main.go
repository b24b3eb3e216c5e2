// Package main provides the entry point for the fedq CLI.
package main

import (
	"os"

	"github.com/aman-cerp/fedq/cmd/fedq/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
