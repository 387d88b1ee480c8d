package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.CampaignsRoot == "" {
		return errors.New("paths.campaigns_root must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.DataVersion == "" {
		return errors.New("workflow.data_version must be set")
	}
	if c.Workflow.LockTimeoutSeconds <= 0 {
		return errors.New("workflow.lock_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if c.Extraction.FallbacksEnabled && c.Extraction.DefaultAssetTheme == "" {
		return errors.New("extraction.default_asset_theme must be set when extraction.fallbacks_enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
