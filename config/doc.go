// Package config loads and validates rsz CLI configuration.
//
// Settings come from a TOML file (default ~/.config/rsz/config.toml, then
// ./rsz.toml). A missing file yields defaults. Paths accept a leading "~".
package config
