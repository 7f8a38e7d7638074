// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go defines the root command, its persistent flags, the service setup
// shared by all subcommands and the version helpers.

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/derpfest/customizations/buildvars"
	"github.com/derpfest/customizations/internal/db"
	"github.com/derpfest/customizations/internal/i18n"
	"github.com/derpfest/customizations/internal/logging"
	"github.com/derpfest/customizations/internal/payload"
	"github.com/derpfest/customizations/internal/tui"
)

const modulePath = "github.com/derpfest/customizations"

var version = "dev"   // set by the linker
var gitCommit = "dev" // short commit SHA, set at build time
var buildDate = ""    // RFC3339, set at build time

// runTUI is replaced in tests.
var runTUI = tui.Run

// app carries the services of the running command between the pre-run
// hook and the command bodies.
type app struct {
	svc     *services
	verbose bool
}

func (a *app) setupDefaultServices(cmd *cobra.Command, _ []string) error {
	cfg, err := loadAppConfig(cmd)
	if err != nil {
		return err
	}

	i18n.Init(cfg.Language)
	logging.SetDebug(a.verbose)
	db.SetDebug(a.verbose)

	svc, err := buildServices(cmd, cfg)
	if err != nil {
		return err
	}
	a.svc = svc
	return nil
}

// teardown closes the services. Cobra skips post-run hooks when a command
// fails, so callers run it after Execute returns.
func (a *app) teardown() {
	a.svc.close()
}

// Execute runs the CLI entrypoint. Interrupts cancel the command context so
// watchers and the TUI shut down cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cmd, a := newRootCmd()
	defer a.teardown()
	return cmd.ExecuteContext(ctx)
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// newRootCmd builds a fresh command tree and the app its commands share.
// Tests call it once per case.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "customizations",
		Short: "Manage DerpFest attestation payloads and settings.",
		Long: `customizations stores the keybox and PIF attestation payloads and the
privacy indicator and quick settings preferences of a DerpFest device.

Payloads are validated before they are stored. Replacing or deleting the
PIF payload force-stops the packages that cache it.

Running without a subcommand will launch the interactive TUI.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setupDefaultServices,
		Version:           compositeVersion(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), tui.Options{Import: a.svc.importOptions(nil)})
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	pf.String("config", "", "config file")
	pf.String("language", "en", `Message language ("en", "de")`)
	pf.String("database.type", "sqlite", "Database type (sqlite, postgres, mysql)")
	pf.String("database.dsn", "./customizations.db", "Database connection string (DSN)")
	pf.String("settings.backend", "sql", `Settings backend ("sql" or "android")`)
	pf.String("keybox.policy", "lenient", `Keybox certificate policy ("strict" or "lenient")`)

	cmd.AddCommand(
		newPayloadCmd(a, payload.Keybox),
		newPayloadCmd(a, payload.Pif),
		newStatusBarCmd(a),
		newQSCmd(a),
		newBackupCmd(a),
		newRestoreCmd(a),
		newAuditCmd(a),
		newVersionCmd(),
	)
	return cmd, a
}

func compositeVersion() string {
	v, c, d := resolveBuildVersion(nil)
	out := v
	if c != "" && c != "dev" {
		out += " (" + c + ")"
	}
	if d != "" {
		out += " built: " + d
	}
	return out
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		// No config or store needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			v, c, d := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version: %s\n", v)
			fmt.Fprintf(out, "commit: %s\n", c)
			if d != "" {
				fmt.Fprintf(out, "built: %s\n", d)
			}
		},
	}
}

// resolveBuildVersion computes the best-available version, commit and build
// date. If info is nil, it reads build info from the runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault(version)
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	if info == nil {
		if local, ok := debug.ReadBuildInfo(); ok {
			info = local
		}
	}

	if info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		if resolvedVersion == "dev" || resolvedVersion == "(devel)" {
			for _, dep := range info.Deps {
				if dep.Path == modulePath && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}
	return resolvedVersion, resolvedCommit, resolvedDate
}
