// Command planboard is a terminal dashboard and HTTP API for a project plan
// kept in one JSON or YAML file.
//
// Usage:
//
//	planboard [command] [flags]
//
// Run planboard --help for the command list.
package main

import (
	"os"

	"github.com/riordanpawley/planboard/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
