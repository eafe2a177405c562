package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/wippyai/rsz/config"
	"github.com/wippyai/rsz/version"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected no config file in temp HOME")
	}
	if resolved != filepath.Join(home, ".config", "rsz", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Catalog.Path != filepath.Join(home, ".local", "share", "rsz", "catalog.db") {
		t.Fatalf("catalog path not expanded: %q", cfg.Catalog.Path)
	}
	if cfg.Scan.Workers != 4 || len(cfg.Scan.Extensions) != 1 || cfg.Scan.Extensions[0] != ".user" {
		t.Fatalf("unexpected scan defaults: %+v", cfg.Scan)
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.SchemaVersion != 0 || opts.AutoVersion {
		t.Fatalf("unexpected default options: %+v", opts)
	}
}

func TestLoadFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(t.TempDir(), "rsz.toml")
	content := `
[decode]
schema_version = "13.0.0.1"
auto_version = true

[log]
level = "DEBUG"
format = "json"

[catalog]
path = "~/scan.db"

[scan]
workers = 8
extensions = ["USER", ".pfb"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q, exists = %v", resolved, exists)
	}
	v, err := cfg.Version()
	if err != nil || v != version.Version(13_00_00) {
		t.Fatalf("Version = %v, %v", v, err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("log = %+v", cfg.Log)
	}
	if cfg.Catalog.Path != filepath.Join(home, "scan.db") {
		t.Fatalf("catalog path = %q", cfg.Catalog.Path)
	}
	if !cfg.MatchesExtension("a/b/Thing.USER") || !cfg.MatchesExtension("x.pfb") || cfg.MatchesExtension("x.tex") {
		t.Fatalf("extensions = %v", cfg.Scan.Extensions)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"bad version", func(c *config.Config) { c.Decode.SchemaVersion = "13.x" }, "decode.schema_version"},
		{"bad level", func(c *config.Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
		{"no workers", func(c *config.Config) { c.Scan.Workers = 0 }, "scan.workers"},
		{"empty extension", func(c *config.Config) { c.Scan.Extensions = []string{""} }, "scan.extensions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate = %v, want error mentioning %q", err, tt.want)
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rsz.toml")
	if err := os.WriteFile(path, []byte("[decode]\nversion = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestCreateSampleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample does not parse: %v", err)
	}
	if cfg.Scan.Workers != config.Default().Scan.Workers {
		t.Fatalf("sample workers = %d", cfg.Scan.Workers)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("Load sample: %v", err)
	}
}
