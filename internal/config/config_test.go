package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if cfg.Workflow.DataVersion != defaultDataVersion {
		t.Fatalf("unexpected data version: %q", cfg.Workflow.DataVersion)
	}
	if !cfg.Extraction.FallbacksEnabled {
		t.Fatal("fallbacks should default to enabled")
	}
	if !filepath.IsAbs(cfg.Paths.CampaignsRoot) {
		t.Fatalf("campaigns root not absolutized: %q", cfg.Paths.CampaignsRoot)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
campaigns_root = "` + filepath.ToSlash(filepath.Join(dir, "campaigns")) + `"
log_dir = "` + filepath.ToSlash(filepath.Join(dir, "logs")) + `"

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatal("expected config file to resolve")
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging values not normalized: %+v", cfg.Logging)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}

	bad := cfg
	bad.Workflow.LockTimeoutSeconds = 0
	if err := bad.Validate(); err == nil || !strings.Contains(err.Error(), "lock_timeout_seconds") {
		t.Fatalf("expected lock timeout rejection, got %v", err)
	}

	bad = cfg
	bad.Logging.Format = "yaml"
	if err := bad.Validate(); err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected format rejection, got %v", err)
	}

	bad = cfg
	bad.Extraction.DefaultAssetTheme = ""
	if err := bad.Validate(); err == nil || !strings.Contains(err.Error(), "default_asset_theme") {
		t.Fatalf("expected asset theme rejection, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config must load cleanly: %v", err)
	}
}
