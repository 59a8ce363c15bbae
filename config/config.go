// Package config reads runtime settings from the environment, optionally
// seeded from a .env file in the working directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	SaveFile    string
	BalanceFile string // empty means the built-in tuning
	Seed        int64
	LogLevel    string
	LogFormat   string
	LogFile     string // empty means stderr
}

// Load loads the configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't.
	_ = godotenv.Load()

	dir := dataDir()
	cfg := &Config{
		SaveFile:    getEnv("SPIRITFIELD_SAVE_FILE", filepath.Join(dir, "save.json")),
		BalanceFile: getEnv("SPIRITFIELD_BALANCE_FILE", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		LogFile:     getEnv("LOG_FILE", ""),
	}

	seed, err := ParseSeed(getEnv("SPIRITFIELD_SEED", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid SPIRITFIELD_SEED value: %w", err)
	}
	cfg.Seed = seed

	return cfg, nil
}

// ParseSeed parses a random seed. An empty string picks a time-based seed.
func ParseSeed(s string) (int64, error) {
	if s == "" {
		return time.Now().UnixNano(), nil
	}
	return strconv.ParseInt(s, 10, 64)
}

// DefaultLogFile is where the terminal UI logs when LOG_FILE is unset, so
// log lines never draw over the screen.
func DefaultLogFile() string {
	return filepath.Join(dataDir(), "spiritfield.log")
}

// dataDir is ~/.spiritfield, or the working directory if there is no home.
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".spiritfield"
	}
	return filepath.Join(home, ".spiritfield")
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
