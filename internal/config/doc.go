// Package config loads, normalizes, and validates modscout's TOML
// configuration.
package config
