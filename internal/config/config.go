package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// LibraryDir is the directory scanned for audio files
	LibraryDir string

	// PlayerBin is the external player binary (must speak mpv's IPC protocol)
	PlayerBin string

	// PollIntervalMS is the completion watcher tick in milliseconds
	PollIntervalMS int

	// RecentWindow is how many recently played tracks are excluded from
	// random selection
	RecentWindow int

	// DataDir holds the history database, recency window, and session files
	DataDir string
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	v.SetDefault("library_dir", defaultLibraryDir())
	v.SetDefault("player_bin", "mpv")
	v.SetDefault("poll_interval_ms", 400)
	v.SetDefault("recent_window", 10)
	v.SetDefault("data_dir", defaultDataDir())

	// Config file is optional
	_ = v.ReadInConfig()

	v.SetEnvPrefix("STILLPOINT")
	v.AutomaticEnv()

	cfg := &Config{
		LibraryDir:     v.GetString("library_dir"),
		PlayerBin:      v.GetString("player_bin"),
		PollIntervalMS: v.GetInt("poll_interval_ms"),
		RecentWindow:   v.GetInt("recent_window"),
		DataDir:        v.GetString("data_dir"),
	}

	return cfg, nil
}

// getConfigDir returns the configuration directory path, creating it if
// it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "stillpoint")
	_ = os.MkdirAll(configDir, 0755)
	return configDir
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".local", "share", "stillpoint")
}

func defaultLibraryDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, "Music", "meditation")
}

// Save writes configuration to file
func (c *Config) Save() error {
	v := viper.New()

	configFile := filepath.Join(getConfigDir(), "config.yaml")

	v.Set("library_dir", c.LibraryDir)
	v.Set("player_bin", c.PlayerBin)
	v.Set("poll_interval_ms", c.PollIntervalMS)
	v.Set("recent_window", c.RecentWindow)
	v.Set("data_dir", c.DataDir)

	return v.WriteConfigAs(configFile)
}
