package config

const (
	defaultConfigPath  = "~/.config/rsz/config.toml"
	defaultProjectPath = "rsz.toml"
	defaultCatalogPath = "~/.local/share/rsz/catalog.db"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultScanWorkers = 4
)

var defaultScanExtensions = []string{".user"}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Log: Log{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Catalog: Catalog{
			Path: defaultCatalogPath,
		},
		Scan: Scan{
			Workers:    defaultScanWorkers,
			Extensions: append([]string(nil), defaultScanExtensions...),
		},
	}
}
