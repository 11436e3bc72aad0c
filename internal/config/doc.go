// Package config loads, normalizes, and validates nzbforge configuration.
//
// Configuration lives in a TOML file (~/.config/nzbforge/config.toml by
// default, or ./nzbforge.toml for project-local runs). Load applies defaults
// first, then file values, then path expansion and validation, so a missing
// file yields a fully usable default configuration.
package config
