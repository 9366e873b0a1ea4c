package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults when no config file, environment or flags say otherwise.
const (
	DefaultConfigFile = "primdb.yaml"
	DefaultDataDir    = "data"
	DefaultLogLevel   = "info"
)

// Config is the binary-level configuration. The core never reads it: the
// data directory is handed to the storage layer as a constructor argument.
type Config struct {
	DataDir     string `yaml:"data_dir"`
	LogLevel    string `yaml:"log_level"`
	HistoryFile string `yaml:"history_file"`
}

// LoadConfig resolves the configuration with precedence flags > env >
// config file > defaults. Env vars come from the process environment,
// topped up from a .env file if one exists.
func LoadConfig(path string, flagDataDir, flagLogLevel string) (Config, error) {
	cfg := Config{
		DataDir:  DefaultDataDir,
		LogLevel: DefaultLogLevel,
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err) && path == DefaultConfigFile:
		// No config file is fine unless one was asked for explicitly.
	default:
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	// Missing .env is not an error.
	_ = godotenv.Load()

	if v := os.Getenv("PRIMDB_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("PRIMDB_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	return cfg, nil
}
