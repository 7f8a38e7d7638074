// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the command-line interface using Cobra. It wires
// configuration and the default services, then delegates to the importer,
// prefs and backup packages. Running without a subcommand starts the TUI.
package cli
