// Package main implements the blockflow CLI (bfq).
// It splits a program into basic blocks, builds the control flow graph and
// reports reaching definitions.
package main

import (
	"os"

	"github.com/l3aro/go-blockflow/cmd/bfq/commands"
)

var (
	version   = "dev"
	buildTime = ""
)

func main() {
	commands.RootCmd.Version = version
	if buildTime != "" {
		commands.RootCmd.Version = version + " (" + buildTime + ")"
	}
	commands.RootCmd.SetVersionTemplate(`bfq version {{.Version}}
`)

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
