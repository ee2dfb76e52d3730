package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tatianab/german-bridge/internal/models"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config holds the application configuration.
type Config struct {
	Store        string
	SaveDir      string
	SaveName     string
	DBPath       string
	PlayingDelay time.Duration
	Formula      models.Formula

	LogLevel  string
	LogFormat string
	LogFile   string
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	saveDir := getEnv("BRIDGE_SAVE_DIR", ".saves")
	cfg := &Config{
		Store:     getEnv("BRIDGE_STORE", StoreFile),
		SaveDir:   saveDir,
		SaveName:  getEnv("BRIDGE_SAVE_NAME", models.DefaultSaveName),
		DBPath:    getEnv("BRIDGE_DB_PATH", filepath.Join(saveDir, "bridge.db")),
		LogLevel:  getEnv("BRIDGE_LOG_LEVEL", "info"),
		LogFormat: getEnv("BRIDGE_LOG_FORMAT", "json"),
		LogFile:   getEnv("BRIDGE_LOG_FILE", filepath.Join(saveDir, "bridge.log")),
	}

	switch cfg.Store {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		return nil, fmt.Errorf("BRIDGE_STORE must be %s, %s or %s, got %q", StoreFile, StoreSQLite, StoreMemory, cfg.Store)
	}

	delay, err := time.ParseDuration(getEnv("BRIDGE_PLAYING_DELAY", "2s"))
	if err != nil {
		return nil, fmt.Errorf("BRIDGE_PLAYING_DELAY: %w", err)
	}
	if delay < 0 {
		return nil, fmt.Errorf("BRIDGE_PLAYING_DELAY must not be negative, got %s", delay)
	}
	cfg.PlayingDelay = delay

	cfg.Formula, err = models.ParseFormula(getEnv("BRIDGE_FORMULA", "squared"))
	if err != nil {
		return nil, fmt.Errorf("BRIDGE_FORMULA: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
