package config

const (
	defaultCampaignsRoot      = "~/.local/share/loom/campaigns"
	defaultLogDir             = "~/.local/share/loom/logs"
	defaultDataVersion        = "1.0"
	defaultLockTimeoutSeconds = 10
	defaultAssetTheme         = "seasonal-promotional"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CampaignsRoot: defaultCampaignsRoot,
			LogDir:        defaultLogDir,
		},
		Workflow: Workflow{
			DataVersion:        defaultDataVersion,
			LockTimeoutSeconds: defaultLockTimeoutSeconds,
		},
		Extraction: Extraction{
			FallbacksEnabled:  true,
			DefaultAssetTheme: defaultAssetTheme,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
