package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Store   StoreConfig
	Server  ServerConfig
	Query   QueryConfig
	Logging LoggingConfig
}

type StoreConfig struct {
	Backend  string
	Database string
	Library  string
}

type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type QueryConfig struct {
	MaxPageSize int
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads the configuration with Read and validates it.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read reads an optional .env file and then the environment without
// validating the result, so callers can apply overrides before Validate.
func Read() (*Config, error) {
	_ = godotenv.Load()

	maxPageSize, err := strconv.Atoi(getEnv("MEDIAROLL_MAX_PAGE_SIZE", "500"))
	if err != nil {
		return nil, fmt.Errorf("invalid MEDIAROLL_MAX_PAGE_SIZE: %w", err)
	}

	cfg := &Config{
		Store: StoreConfig{
			Backend:  strings.ToLower(getEnv("MEDIAROLL_BACKEND", "sqlite")),
			Database: ExpandPath(getEnv("MEDIAROLL_DATABASE", "~/.mediaroll.sqlite")),
			Library:  ExpandPath(getEnv("MEDIAROLL_LIBRARY", "~/Pictures/mediaroll")),
		},
		Server: ServerConfig{
			Addr:            getEnv("MEDIAROLL_HTTP_ADDR", ":8080"),
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Query: QueryConfig{
			MaxPageSize: maxPageSize,
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "sqlite", "bleve":
	default:
		return fmt.Errorf("MEDIAROLL_BACKEND must be sqlite or bleve, got %q", c.Store.Backend)
	}
	if c.Store.Database == "" {
		return fmt.Errorf("MEDIAROLL_DATABASE is required")
	}
	if c.Query.MaxPageSize <= 0 {
		return fmt.Errorf("MEDIAROLL_MAX_PAGE_SIZE must be positive, got %d", c.Query.MaxPageSize)
	}
	return nil
}

// ExpandPath resolves a leading ~ and makes path absolute.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "~") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[1:])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
