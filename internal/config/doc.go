// Package config loads the CLI settings from defaults, an optional TOML file,
// a .env file and the environment, in that order of precedence.
package config
