// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for the customizations tool.
//
// Usage:
//
//	go run . [flags]
//	./customizations [flags]
//
// Without a subcommand the interactive TUI starts. See --help for options.
package main

import (
	"os"

	"github.com/derpfest/customizations/internal/logging"
	"github.com/derpfest/customizations/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.Debugf("customizations CLI error: %v", err)
		os.Exit(1)
	}
}
