package config

import "strings"

func (c *Config) normalize() error {
	var err error
	if c.Paths.CampaignsRoot, err = expandPath(c.Paths.CampaignsRoot); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.Workflow.DataVersion = strings.TrimSpace(c.Workflow.DataVersion)
	c.Extraction.DefaultAssetTheme = strings.TrimSpace(c.Extraction.DefaultAssetTheme)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}
