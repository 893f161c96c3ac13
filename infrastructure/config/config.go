package config

import (
	"fmt"
	"os"
	"strconv"
)

// Storage backend names
const (
	StorageBackendFile   = "file"
	StorageBackendSQLite = "sqlite"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Storage configuration
	StorageBackend string // "file" or "sqlite"
	DataDir        string // directory for JSON snapshots
	SQLitePath     string // database path for the sqlite backend

	// Logging
	LogLevel string

	// Feature flags
	EnableMetrics bool
	EnableCORS    bool

	// CORS
	AllowedOrigins []string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		StorageBackend: getEnv("STORAGE_BACKEND", StorageBackendFile),
		DataDir:        getEnv("DATA_DIR", "data"),
		SQLitePath:     getEnv("SQLITE_PATH", "data/skilltree.db"),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),

		AllowedOrigins: []string{getEnv("ALLOWED_ORIGIN", "http://localhost:3000")},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid combinations
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageBackendFile, StorageBackendSQLite:
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q: must be %q or %q",
			c.StorageBackend, StorageBackendFile, StorageBackendSQLite)
	}

	if c.StorageBackend == StorageBackendFile && c.DataDir == "" {
		return fmt.Errorf("DATA_DIR cannot be empty with the file storage backend")
	}
	if c.StorageBackend == StorageBackendSQLite && c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH cannot be empty with the sqlite storage backend")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
