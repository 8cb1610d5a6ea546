package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Settings is the tool configuration.
type Settings struct {
	Server   ServerConfig   `mapstructure:"server"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Client   ClientConfig   `mapstructure:"client"`
}

// ServerConfig points at the download server and the build service.
type ServerConfig struct {
	DownloadURL     string `mapstructure:"download_url"`
	BuildServiceURL string `mapstructure:"build_service_url"`
	PollInterval    int    `mapstructure:"poll_interval"` // seconds
}

// DefaultsConfig preselects firmware version/target/arch for commands that
// accept them as flags.
type DefaultsConfig struct {
	Version string `mapstructure:"version"`
	Target  string `mapstructure:"target"`
	Arch    string `mapstructure:"arch"`
	UseAPK  bool   `mapstructure:"use_apk"` // fetch binary packages.adb indices
}

// ClientConfig holds local paths and logging.
type ClientConfig struct {
	CacheDir string `mapstructure:"cache_dir"`
	DataDir  string `mapstructure:"data_dir"`
	LogLevel string `mapstructure:"log_level"`
}

var defaultSettings = Settings{
	Server: ServerConfig{
		DownloadURL:     "https://downloads.openwrt.org",
		BuildServiceURL: "https://sysupgrade.openwrt.org",
		PollInterval:    5,
	},
	Defaults: DefaultsConfig{
		Version: "23.05.3",
		UseAPK:  false,
	},
	Client: ClientConfig{
		LogLevel: "info",
	},
}

// Load loads configuration from file and environment
func Load(configPath string) (*Settings, error) {
	viper.SetConfigType("yaml")

	// Set defaults
	viper.SetDefault("server.download_url", defaultSettings.Server.DownloadURL)
	viper.SetDefault("server.build_service_url", defaultSettings.Server.BuildServiceURL)
	viper.SetDefault("server.poll_interval", defaultSettings.Server.PollInterval)
	viper.SetDefault("defaults.version", defaultSettings.Defaults.Version)
	viper.SetDefault("defaults.target", defaultSettings.Defaults.Target)
	viper.SetDefault("defaults.arch", defaultSettings.Defaults.Arch)
	viper.SetDefault("defaults.use_apk", defaultSettings.Defaults.UseAPK)
	viper.SetDefault("client.cache_dir", "")
	viper.SetDefault("client.data_dir", "")
	viper.SetDefault("client.log_level", defaultSettings.Client.LogLevel)

	// Try to load config file
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		// Look for config in current directory and the user config dir
		viper.SetConfigName("fwselect")
		viper.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "fwselect"))
		}
	}

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is not an error, we'll use defaults
	}

	// Bind environment variables
	viper.SetEnvPrefix("FWSELECT")
	viper.AutomaticEnv()

	// Unmarshal configuration
	var settings Settings
	if err := viper.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	settings.fillPaths()

	return &settings, nil
}

// fillPaths defaults the local directories under the user home.
func (s *Settings) fillPaths() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	base := filepath.Join(home, ".fwselect")
	if s.Client.CacheDir == "" {
		s.Client.CacheDir = filepath.Join(base, "cache")
	}
	if s.Client.DataDir == "" {
		s.Client.DataDir = filepath.Join(base, "profiles")
	}
}

// CatalogCachePath is where the update command snapshots the loaded catalog.
func (s *Settings) CatalogCachePath() string {
	return filepath.Join(s.Client.CacheDir, "catalog.json")
}

// ProfilesCachePath is where the update command snapshots profiles.json.
func (s *Settings) ProfilesCachePath() string {
	return filepath.Join(s.Client.CacheDir, "profiles.json")
}

// SaveTemplate saves a configuration template
func SaveTemplate(path string) error {
	templateContent := `# fwselect configuration file

server:
  # Image download server hosting the package feeds
  download_url: "https://downloads.openwrt.org"

  # Build service accepting custom image requests
  build_service_url: "https://sysupgrade.openwrt.org"

  # Build status polling interval in seconds
  poll_interval: 5

defaults:
  # Firmware version used when --version is not given.
  # Use "SNAPSHOT" for snapshot builds.
  version: "23.05.3"

  # Default target (e.g. ath79/generic) and package architecture
  target: ""
  arch: ""

  # Fetch the APK v3 binary index (packages.adb) instead of Packages
  use_apk: false

client:
  # Local catalog cache directory (defaults to ~/.fwselect/cache)
  cache_dir: ""

  # Saved profile directory (defaults to ~/.fwselect/profiles)
  data_dir: ""

  # Log level: debug, info, warn, error
  log_level: "info"
`

	return os.WriteFile(path, []byte(templateContent), 0644)
}
