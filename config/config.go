package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/wippyai/rsz"
	"github.com/wippyai/rsz/version"
)

//go:embed sample_config.toml
var sampleConfig string

// Decode controls how blocks are decoded.
type Decode struct {
	SchemaVersion string `toml:"schema_version"` // "13.0.0", "13.0.0.1" or "130000"
	AutoVersion   bool   `toml:"auto_version"`
}

// Log contains configuration for log output.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Catalog locates the scan catalogue database.
type Catalog struct {
	Path string `toml:"path"`
}

// Scan controls directory scanning.
type Scan struct {
	Workers    int      `toml:"workers"`
	Extensions []string `toml:"extensions"`
}

// Config holds every setting of the CLI.
type Config struct {
	Decode  Decode  `toml:"decode"`
	Log     Log     `toml:"log"`
	Catalog Catalog `toml:"catalog"`
	Scan    Scan    `toml:"scan"`
}

// DefaultConfigPath returns the absolute path of the per-user config file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads path, or the default locations when path is empty, and returns
// the normalized config together with the resolved path and whether a file
// was found.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		dec := toml.NewDecoder(file)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(defaultProjectPath)
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	c.Decode.SchemaVersion = strings.TrimSpace(c.Decode.SchemaVersion)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Catalog.Path) == "" {
		c.Catalog.Path = defaultCatalogPath
	}
	if c.Catalog.Path, err = expandPath(c.Catalog.Path); err != nil {
		return fmt.Errorf("catalog.path: %w", err)
	}
	if c.Scan.Workers == 0 {
		c.Scan.Workers = defaultScanWorkers
	}
	if len(c.Scan.Extensions) == 0 {
		c.Scan.Extensions = append([]string(nil), defaultScanExtensions...)
	}
	for i, ext := range c.Scan.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Scan.Extensions[i] = ext
	}
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if _, err := c.Version(); err != nil {
		return fmt.Errorf("decode.schema_version: %w", err)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json (got %q)", c.Log.Format)
	}
	if c.Scan.Workers < 1 {
		return errors.New("scan.workers must be at least 1")
	}
	for _, ext := range c.Scan.Extensions {
		if ext == "" || ext == "." {
			return errors.New("scan.extensions must not contain empty entries")
		}
	}
	return nil
}

// Version parses decode.schema_version. Empty means version 0.
func (c *Config) Version() (version.Version, error) {
	if c.Decode.SchemaVersion == "" {
		return 0, nil
	}
	return version.Parse(c.Decode.SchemaVersion)
}

// Options returns the decode options described by c.
func (c *Config) Options() (rsz.Options, error) {
	v, err := c.Version()
	if err != nil {
		return rsz.Options{}, err
	}
	return rsz.Options{SchemaVersion: v, AutoVersion: c.Decode.AutoVersion}, nil
}

// MatchesExtension reports whether name should be scanned.
func (c *Config) MatchesExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range c.Scan.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// CreateSample writes a sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			path = home
		} else if len(path) > 1 && (path[1] == '/' || path[1] == '\\') {
			path = filepath.Join(home, path[2:])
		}
	}
	cleaned := filepath.Clean(path)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
