// Package config loads, validates, and normalizes slate configuration.
//
// Configuration lives in a TOML file, by default ~/.config/slate/config.toml,
// with a project-local slate.toml as fallback. Every path field is expanded
// (including ~) and made absolute during load, so downstream code never
// deals with relative or user-anchored paths.
package config
