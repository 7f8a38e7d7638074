// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config provides configuration loading, merging, and persistence
// helpers. It uses Viper for file/env/flag parsing and goccy/go-yaml to write
// the default configuration file on first run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	appName   = "customizations"
	envPrefix = "customizations"
)

// Config is the full application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Language string         `mapstructure:"language" yaml:"language"`
	Settings SettingsConfig `mapstructure:"settings" yaml:"settings"`
	Keybox   KeyboxConfig   `mapstructure:"keybox" yaml:"keybox"`
	ProcMgr  ProcMgrConfig  `mapstructure:"procmgr" yaml:"procmgr"`
	SFTP     SFTPConfig     `mapstructure:"sftp" yaml:"sftp"`
}

// DatabaseConfig selects the SQL engine backing the settings store.
type DatabaseConfig struct {
	Type string `mapstructure:"type" yaml:"type"`
	Dsn  string `mapstructure:"dsn" yaml:"dsn"`
}

// SettingsConfig selects the settings store backend ("sql" or "android").
// Command is the argv prefix used by the android backend.
type SettingsConfig struct {
	Backend string   `mapstructure:"backend" yaml:"backend"`
	Command []string `mapstructure:"command" yaml:"command"`
}

// KeyboxConfig holds the certificate-count policy ("strict" or "lenient").
type KeyboxConfig struct {
	Policy string `mapstructure:"policy" yaml:"policy"`
}

// ProcMgrConfig configures the force-stop side effect.
type ProcMgrConfig struct {
	Enabled  bool     `mapstructure:"enabled" yaml:"enabled"`
	Command  []string `mapstructure:"command" yaml:"command"`
	Packages []string `mapstructure:"packages" yaml:"packages"`
}

// SFTPConfig configures remote document sources.
type SFTPConfig struct {
	KnownHosts     string `mapstructure:"known_hosts" yaml:"known_hosts"`
	PasswordPrompt bool   `mapstructure:"password_prompt" yaml:"password_prompt"`
}

// Defaults returns the default values keyed by their viper path.
func Defaults() map[string]any {
	return map[string]any{
		"database.type":        "sqlite",
		"database.dsn":         "./customizations.db",
		"language":             "en",
		"settings.backend":     "sql",
		"settings.command":     []string{"settings"},
		"keybox.policy":        "lenient",
		"procmgr.enabled":      true,
		"procmgr.command":      []string{"am", "force-stop"},
		"procmgr.packages":     []string{"com.google.android.gms", "com.android.vending"},
		"sftp.known_hosts":     "",
		"sftp.password_prompt": false,
	}
}

// DefaultConfig returns Defaults as a Config, for writing a first-run file.
func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{Type: "sqlite", Dsn: "./customizations.db"},
		Language: "en",
		Settings: SettingsConfig{Backend: "sql", Command: []string{"settings"}},
		Keybox:   KeyboxConfig{Policy: "lenient"},
		ProcMgr: ProcMgrConfig{
			Enabled:  true,
			Command:  []string{"am", "force-stop"},
			Packages: []string{"com.google.android.gms", "com.android.vending"},
		},
	}
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "DerpFest")
		default:
			configDir = "/etc/derpfest"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "derpfest")
	}

	return filepath.Join(configDir, appName+".yaml"), nil
}

// LoadConfig reads defaults, the config file, the environment and the
// command's flags, in increasing precedence, into a T. A missing config
// file is reported as viper.ConfigFileNotFoundError together with a fully
// populated T.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, additionalConfigFilePath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName(appName)
	v.SetConfigType("yaml")

	if additionalConfigFilePath != nil {
		v.SetConfigFile(*additionalConfigFilePath)
	}

	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	var notFound error
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return c, err
		}
		notFound = err
	}

	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, notFound
}

// WriteConfigFile serializes c to the user (or system) config path.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	return os.WriteFile(path, data, 0600)
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	switch c.Database.Type {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	switch c.Settings.Backend {
	case "sql", "android":
	default:
		return fmt.Errorf("unsupported settings backend %q", c.Settings.Backend)
	}
	switch c.Keybox.Policy {
	case "strict", "lenient":
	default:
		return fmt.Errorf("unsupported keybox policy %q", c.Keybox.Policy)
	}
	if c.Settings.Backend == "android" && len(c.Settings.Command) == 0 {
		return errors.New("settings.command must not be empty for the android backend")
	}
	if c.ProcMgr.Enabled && len(c.ProcMgr.Command) == 0 {
		return errors.New("procmgr.command must not be empty when procmgr is enabled")
	}
	return nil
}
