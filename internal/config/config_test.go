package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	cfg "github.com/derpfest/customizations/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	// Force user config dir to tmp and keep the working directory clean.
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("HOME", tmp)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return tmp
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	isolate(t)

	c, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), nil)
	if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
		t.Fatalf("expected ConfigFileNotFoundError, got: %T %v", err, err)
	}
	if c.Database.Type != "sqlite" || c.Keybox.Policy != "lenient" || c.Settings.Backend != "sql" {
		t.Fatalf("defaults not applied: %+v", c)
	}
	if len(c.ProcMgr.Packages) != 2 || c.ProcMgr.Packages[0] != "com.google.android.gms" {
		t.Fatalf("unexpected default packages: %v", c.ProcMgr.Packages)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadConfig_ReadsExplicitFile(t *testing.T) {
	tmp := isolate(t)
	yaml := "database:\n  type: postgres\n  dsn: postgresql://user@/db\nlanguage: de\nkeybox:\n  policy: strict\n"
	file := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(file, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), &file)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Database.Type != "postgres" || c.Database.Dsn != "postgresql://user@/db" {
		t.Fatalf("database not read: %+v", c.Database)
	}
	if c.Language != "de" || c.Keybox.Policy != "strict" {
		t.Fatalf("unexpected values: %+v", c)
	}
	// Keys absent from the file keep their defaults.
	if c.Settings.Backend != "sql" {
		t.Fatalf("expected default settings backend, got %q", c.Settings.Backend)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	isolate(t)
	t.Setenv("CUSTOMIZATIONS_KEYBOX_POLICY", "strict")

	c, _ := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), nil)
	if c.Keybox.Policy != "strict" {
		t.Fatalf("expected env override, got %q", c.Keybox.Policy)
	}
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	isolate(t)
	cmd := &cobra.Command{}
	cmd.Flags().String("database.type", "sqlite", "")
	if err := cmd.Flags().Set("database.type", "mysql"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	c, _ := cfg.LoadConfig[cfg.Config](cmd, cfg.Defaults(), nil)
	if c.Database.Type != "mysql" {
		t.Fatalf("expected flag override, got %q", c.Database.Type)
	}
}

func TestWriteConfigFile_CreatesFile(t *testing.T) {
	isolate(t)

	c := cfg.Config{}
	c.Database.Type = "sqlite"
	c.Database.Dsn = "./customizations.db"
	c.Language = "en"

	if err := cfg.WriteConfigFile(&c, false); err != nil {
		t.Fatalf("WriteConfigFile failed: %v", err)
	}

	path, err := cfg.GetConfigPath(false)
	if err != nil {
		t.Fatalf("GetConfigPath failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected config file at %s, read error: %v", path, err)
	}
	if len(data) == 0 {
		t.Fatalf("config file is empty")
	}
}

func TestValidate_RejectsUnknownValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*cfg.Config)
	}{
		{"db type", func(c *cfg.Config) { c.Database.Type = "oracle" }},
		{"backend", func(c *cfg.Config) { c.Settings.Backend = "registry" }},
		{"policy", func(c *cfg.Config) { c.Keybox.Policy = "exact" }},
		{"android without command", func(c *cfg.Config) { c.Settings.Backend = "android"; c.Settings.Command = nil }},
		{"procmgr without command", func(c *cfg.Config) { c.ProcMgr.Command = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cfg.Config{
				Database: cfg.DatabaseConfig{Type: "sqlite", Dsn: ":memory:"},
				Settings: cfg.SettingsConfig{Backend: "sql", Command: []string{"settings"}},
				Keybox:   cfg.KeyboxConfig{Policy: "lenient"},
				ProcMgr:  cfg.ProcMgrConfig{Enabled: true, Command: []string{"am", "force-stop"}},
			}
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestDefaultConfig_MatchesDefaults(t *testing.T) {
	isolate(t)

	loaded, _ := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), nil)
	want := cfg.DefaultConfig()
	if !reflect.DeepEqual(loaded, want) {
		t.Fatalf("DefaultConfig drifted from Defaults:\n got %+v\nwant %+v", want, loaded)
	}
	if err := want.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}
