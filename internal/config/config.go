package config

import (
	"os"
	"strconv"

	"gotypo/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Engine   EngineConfig
	Import   ImportConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// EngineConfig holds evaluation engine settings
type EngineConfig struct {
	// Concurrency caps how many languages evaluate at once in bulk runs
	Concurrency int
}

// ImportConfig holds seed import settings
type ImportConfig struct {
	// SeedFile is the survey workbook (.xlsx) or directory of CSV tables
	SeedFile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Engine: EngineConfig{
			Concurrency: getEnvIntOrDefault("DAG_CONCURRENCY", 4),
		},
		Import: ImportConfig{
			SeedFile: os.Getenv("SEED_FILE"),
		},
	}

	if cfg.Database.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}
	if cfg.Engine.Concurrency < 1 {
		return nil, errors.ConfigInvalid("DAG_CONCURRENCY must be at least 1")
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
