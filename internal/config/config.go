// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store drivers accepted by APP_STORE.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Store selects the content group repository: "postgres" or "memory".
	Store string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// DBMaxOpenConns caps the connection pool; zero uses the database default.
	DBMaxOpenConns int

	// Valkey (Redis-compatible cache). Caching is disabled when ValkeyHost is empty.
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	ValkeyDB       int
	CacheTTL       time.Duration

	// Content storage locations
	ContentImagePath string
	ContentImageURL  string
	ContentFilePath  string

	// SchemaFile is a YAML schema document. When empty the built-in example
	// schema is used in development.
	SchemaFile string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		Store: envOrDefault("APP_STORE", StorePostgres),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "contentcms"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "contentcms"),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		ContentImagePath: envOrDefault("CONTENT_IMAGE_PATH", "./data/images"),
		ContentImageURL:  envOrDefault("CONTENT_IMAGE_URL", "/content/images"),
		ContentFilePath:  envOrDefault("CONTENT_FILE_PATH", "./data/files"),

		SchemaFile: os.Getenv("CONTENT_SCHEMA"),
	}

	ttl, err := strconv.Atoi(envOrDefault("CACHE_TTL_SECONDS", "300"))
	if err != nil || ttl < 0 {
		return nil, fmt.Errorf("CACHE_TTL_SECONDS must be a non-negative integer")
	}
	cfg.CacheTTL = time.Duration(ttl) * time.Second

	if cfg.DBMaxOpenConns, err = strconv.Atoi(envOrDefault("POSTGRES_MAX_OPEN_CONNS", "25")); err != nil || cfg.DBMaxOpenConns < 1 {
		return nil, fmt.Errorf("POSTGRES_MAX_OPEN_CONNS must be a positive integer")
	}
	if cfg.ValkeyDB, err = strconv.Atoi(envOrDefault("VALKEY_DB", "0")); err != nil || cfg.ValkeyDB < 0 {
		return nil, fmt.Errorf("VALKEY_DB must be a non-negative integer")
	}

	switch cfg.Store {
	case StorePostgres, StoreMemory:
	default:
		return nil, fmt.Errorf("APP_STORE must be %q or %q, got %q", StorePostgres, StoreMemory, cfg.Store)
	}

	if cfg.Env == "production" {
		if cfg.Store == StorePostgres && cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.SchemaFile == "" {
			return nil, fmt.Errorf("CONTENT_SCHEMA must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// CacheEnabled reports whether a Valkey host was configured.
func (c *Config) CacheEnabled() bool {
	return c.ValkeyHost != ""
}

// ContentDefinition returns the content config definition populated from
// the environment.
func (c *Config) ContentDefinition() *ContentDefinition {
	return NewContentDefinition().
		StoreImagesUnder(c.ContentImagePath).
		MappedToURL(c.ContentImageURL).
		StoreFilesUnder(c.ContentFilePath)
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
