// Package config resolves application settings from the environment, with
// an optional .env file for development overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

const appDirName = "steam-desktop-authenticator"

// Config carries every runtime setting of the authenticator.
type Config struct {
	// ConfigDir is the application config directory; the account store and
	// the watch cache live here.
	ConfigDir string

	// AccountsFile is the persisted account store (pretty JSON).
	AccountsFile string

	// WatchCacheFile is the bbolt database of seen confirmations.
	WatchCacheFile string

	APIBase       string
	CommunityBase string
	HTTPTimeout   time.Duration
	WatchInterval time.Duration
	LogLevel      string
}

// Load reads the configuration. A .env file in the working directory is
// honored when present; a missing one is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configDir := os.Getenv("SDA_CONFIG_DIR")
	if configDir == "" {
		userDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("could not resolve config directory: %w", err)
		}
		configDir = filepath.Join(userDir, appDirName)
	}

	return &Config{
		ConfigDir:      configDir,
		AccountsFile:   filepath.Join(configDir, "config.json"),
		WatchCacheFile: filepath.Join(configDir, "watch-cache.db"),
		APIBase:        getEnv("SDA_API_BASE", ""),
		CommunityBase:  getEnv("SDA_COMMUNITY_BASE", ""),
		HTTPTimeout:    getDuration("SDA_HTTP_TIMEOUT", 30*time.Second),
		WatchInterval:  getDuration("SDA_WATCH_INTERVAL", 30*time.Second),
		LogLevel:       getEnv("SDA_LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
