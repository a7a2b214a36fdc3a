package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/dori/devtasks/internal/db"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "DEVTASKS"

// Config holds application configuration
type Config struct {
	DataDir  string `envconfig:"DATA_DIR"`
	DBPath   string `envconfig:"DB_PATH"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Theme    string `envconfig:"THEME" default:"nord"`
	Notify   bool   `envconfig:"NOTIFY" default:"true"`
}

// Load reads configuration from DEVTASKS_* environment variables, after
// loading an optional .env file from the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads configuration from the process environment only
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	cfg := &Config{
		LogLevel: "info",
		Theme:    "nord",
		Notify:   true,
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = db.DefaultDataDir()
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "devtasks.db")
	}
}

// LogPath returns the path of the log file inside the data directory
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "devtasks.log")
}

// LockPath returns the path of the single-instance lock file
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, "devtasks.lock")
}
