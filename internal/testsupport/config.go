package testsupport

import (
	"path/filepath"
	"testing"

	"loom/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CampaignsRoot = filepath.Join(base, "campaigns")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithFallbacksDisabled turns off extraction fallbacks on the test config.
func WithFallbacksDisabled() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Extraction.FallbacksEnabled = false
	}
}

// WithDataVersion overrides the envelope data version on the test config.
func WithDataVersion(version string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.DataVersion = version
	}
}
