// Package config loads and validates loom's TOML configuration.
//
// Loading is split across three passes: Default seeds repository defaults,
// normalize expands and absolutizes paths, and Validate rejects unusable
// values before any component starts.
package config
