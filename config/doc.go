// Package config loads the infobot service configuration.
//
// Values come from three layers, later ones winning: built-in defaults, a
// TOML or YAML file, and INFOBOT_* environment variables. Command-line flags
// are applied on top by the CLI.
package config
