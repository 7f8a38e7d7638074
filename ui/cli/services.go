// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/derpfest/customizations/internal/config"
	"github.com/derpfest/customizations/internal/db"
	"github.com/derpfest/customizations/internal/i18n"
	"github.com/derpfest/customizations/internal/importer"
	"github.com/derpfest/customizations/internal/logging"
	"github.com/derpfest/customizations/internal/payload"
	"github.com/derpfest/customizations/internal/procmgr"
	"github.com/derpfest/customizations/internal/settings"
	"github.com/derpfest/customizations/internal/source"
)

// services is everything a command needs, built once per invocation.
type services struct {
	cfg      config.Config
	store    settings.Store
	sqlStore *db.Store // nil for the android backend
	stopper  procmgr.Stopper
	packages []string
	policy   payload.Policy
	opener   *source.Resolver
	ctrl     *importer.Controller
}

// importOptions returns the controller options, e.g. for the TUI which
// installs its own notifier.
func (s *services) importOptions(n importer.Notifier) importer.Options {
	return importer.Options{
		Store:    s.store,
		Opener:   s.opener,
		Stopper:  s.stopper,
		Packages: s.packages,
		Policy:   s.policy,
		Notifier: n,
	}
}

func (s *services) close() {
	if s == nil || s.sqlStore == nil {
		return
	}
	if err := s.sqlStore.Close(); err != nil {
		logging.Warnf("closing settings store: %v", err)
	}
}

// Hooks replaced in tests.
var (
	androidRunner settings.Runner = settings.ExecRunner
	newStopper                    = func(c config.ProcMgrConfig) procmgr.Stopper {
		if !c.Enabled {
			return procmgr.NopStopper{}
		}
		return procmgr.NewExecStopper(c.Command)
	}
)

// loadAppConfig reads the layered configuration and writes the defaults on
// first run.
func loadAppConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := getConfigPathFromCli(cmd)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.LoadConfig[config.Config](cmd, config.Defaults(), path)
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		// Persist the defaults, not this invocation's flags and environment.
		defaults := config.DefaultConfig()
		if writeErr := config.WriteConfigFile(&defaults, false); writeErr != nil {
			logging.Warnf("could not write default config file: %v", writeErr)
		} else {
			logging.Debugf("wrote default config to the user config path")
		}
	} else if err != nil {
		return cfg, fmt.Errorf("error loading config: %w", err)
	}
	cfg.Keybox.Policy = strings.ToLower(strings.TrimSpace(cfg.Keybox.Policy))
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// buildServices opens the settings store and wires the importer.
func buildServices(cmd *cobra.Command, cfg config.Config) (*services, error) {
	policy, err := payload.ParsePolicy(cfg.Keybox.Policy)
	if err != nil {
		return nil, err
	}
	s := &services{
		cfg:      cfg,
		stopper:  newStopper(cfg.ProcMgr),
		packages: cfg.ProcMgr.Packages,
		policy:   policy,
	}

	switch cfg.Settings.Backend {
	case "android":
		s.store = settings.NewAndroidStore(cfg.Settings.Command, androidRunner)
	default:
		st, err := db.NewStoreFromDSN(cfg.Database.Type, cfg.Database.Dsn)
		if err != nil {
			return nil, errors.New(i18n.T("config_error_init_db", err))
		}
		s.store, s.sqlStore = st, st
	}

	s.opener = source.NewResolver(source.SFTPOptions{
		KnownHosts:     cfg.SFTP.KnownHosts,
		PasswordPrompt: cfg.SFTP.PasswordPrompt,
	})
	s.opener.Stdin = cmd.InOrStdin()

	out := cmd.OutOrStdout()
	s.ctrl = importer.New(s.importOptions(importer.NotifierFunc(func(n importer.Notification) {
		_, _ = fmt.Fprintln(out, n.Message)
	})))
	return s, nil
}
