// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, defaults and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Setenv(EnvDataDir, "")

	configPath := writeConfig(t, "config.yaml", `
database:
  dir: "/var/lib/fooocus"
  driver: "sqlite3"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Dir != "/var/lib/fooocus" {
		t.Errorf("Database.Dir = %q, want %q", cfg.Database.Dir, "/var/lib/fooocus")
	}
	if cfg.Database.Driver != DriverSQLite3 {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverSQLite3)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_TOML(t *testing.T) {
	t.Setenv(EnvDataDir, "")

	configPath := writeConfig(t, "config.toml", `
[database]
dir = "/srv/fooocus"

[logging]
level = "warn"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Dir != "/srv/fooocus" {
		t.Errorf("Database.Dir = %q, want %q", cfg.Database.Dir, "/srv/fooocus")
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("Database.Driver = %q, want default %q", cfg.Database.Driver, DriverSQLite)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "warn")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want default %q", cfg.Logging.Format, "text")
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv(EnvDataDir, "")
	t.Setenv("TEST_FOOOCUS_HOME", "/home/artist")
	t.Setenv("TEST_FOOOCUS_LEVEL", "error")

	configPath := writeConfig(t, "config.yaml", `
database:
  dir: "${TEST_FOOOCUS_HOME}/.local/share/fooocus-config"
logging:
  level: "${TEST_FOOOCUS_LEVEL}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Dir != "/home/artist/.local/share/fooocus-config" {
		t.Errorf("Database.Dir = %q, want expanded path", cfg.Database.Dir)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "error")
	}
}

func TestLoad_UnsetEnvVarUsesDefault(t *testing.T) {
	t.Setenv(EnvDataDir, "")
	t.Setenv("TEST_FOOOCUS_UNSET", "")

	configPath := writeConfig(t, "config.yaml", `
database:
  dir: "${TEST_FOOOCUS_UNSET}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Dir != DefaultDataDir() {
		t.Errorf("Database.Dir = %q, want default %q", cfg.Database.Dir, DefaultDataDir())
	}
}

func TestLoad_DataDirOverride(t *testing.T) {
	t.Setenv(EnvDataDir, "/tmp/override")

	configPath := writeConfig(t, "config.yaml", `
database:
  dir: "/var/lib/fooocus"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Dir != "/tmp/override" {
		t.Errorf("Database.Dir = %q, want %q", cfg.Database.Dir, "/tmp/override")
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv(EnvDataDir, "")

	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			file:    "config.yaml",
			content: "database: [unclosed",
			wantErr: "parsing config file",
		},
		{
			name:    "invalid toml",
			file:    "config.toml",
			content: "[database\ndir = ",
			wantErr: "parsing config file",
		},
		{
			name:    "unknown driver",
			file:    "config.yaml",
			content: "database:\n  driver: postgres\n",
			wantErr: "database.driver",
		},
		{
			name:    "unknown level",
			file:    "config.yaml",
			content: "logging:\n  level: verbose\n",
			wantErr: "logging.level",
		},
		{
			name:    "unknown format",
			file:    "config.yaml",
			content: "logging:\n  format: xml\n",
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.content))
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
	if !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("Load() error = %q, want reading error", err)
	}
}

func TestDefault(t *testing.T) {
	t.Setenv(EnvDataDir, "")

	cfg := Default()
	if cfg.Database.Dir != DefaultDataDir() {
		t.Errorf("Database.Dir = %q, want %q", cfg.Database.Dir, DefaultDataDir())
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverSQLite)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}

	t.Setenv(EnvDataDir, "/data/fooocus")
	if got := Default().Database.Dir; got != "/data/fooocus" {
		t.Errorf("Default() with %s: Dir = %q, want %q", EnvDataDir, got, "/data/fooocus")
	}
}

func TestDefaultDataDir(t *testing.T) {
	t.Setenv("HOME", "/home/artist")

	want := filepath.Join("/home/artist", ".local", "share", "fooocus-config")
	if got := DefaultDataDir(); got != want {
		t.Errorf("DefaultDataDir() = %q, want %q", got, want)
	}
}

func TestValidate_EmptyDir(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Driver: DriverSQLite},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for empty dir")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_EXPAND_A", "alpha")

	tests := []struct {
		in   string
		want string
	}{
		{"${TEST_EXPAND_A}", "alpha"},
		{"x/${TEST_EXPAND_A}/y", "x/alpha/y"},
		{"${TEST_EXPAND_MISSING_VAR}", ""},
		{"$TEST_EXPAND_A", "$TEST_EXPAND_A"},
		{"no vars", "no vars"},
	}

	for _, tt := range tests {
		if got := expandEnvVars(tt.in); got != tt.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
