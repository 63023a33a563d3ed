// Package config loads application configuration from environment variables.
// All variables use the ASSESS_ prefix.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Submission backends.
const (
	SubmissionHTTP     = "http"
	SubmissionPostgres = "postgres"
	SubmissionMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Cache      CacheConfig
	Curriculum CurriculumConfig
	Submission SubmissionConfig
	Events     EventsConfig
	Log        LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL disables
// the database.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
	Migrate  bool
}

// CacheConfig holds Redis connection settings. An empty URL disables the cache.
type CacheConfig struct {
	URL        string
	CatalogTTL time.Duration
}

// CurriculumConfig holds the subject catalog sources, tried in order:
// curriculum service, workbook, YAML file, built-in table.
type CurriculumConfig struct {
	URL           string
	Timeout       time.Duration
	WorkbookPath  string
	WorkbookSheet string
	YAMLPath      string
}

// SubmissionConfig selects where compiled requests are sent.
type SubmissionConfig struct {
	Backend string // "http", "postgres" or "memory"
	URL     string
	Token   string
	Timeout time.Duration
}

// EventsConfig holds workflow event settings.
type EventsConfig struct {
	Persist bool // also write events to PostgreSQL
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with ASSESS_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("ASSESS_SERVER_PORT", 8080),
			Host: envStr("ASSESS_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("ASSESS_DATABASE_URL", ""),
			MaxConns: envInt("ASSESS_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("ASSESS_DATABASE_MIN_CONNS", 2),
			Migrate:  envBool("ASSESS_DATABASE_MIGRATE", true),
		},
		Cache: CacheConfig{
			URL:        envStr("ASSESS_CACHE_URL", ""),
			CatalogTTL: envDuration("ASSESS_CACHE_CATALOG_TTL", 6*time.Hour),
		},
		Curriculum: CurriculumConfig{
			URL:           envStr("ASSESS_CURRICULUM_URL", ""),
			Timeout:       envDuration("ASSESS_CURRICULUM_TIMEOUT", 10*time.Second),
			WorkbookPath:  envStr("ASSESS_CURRICULUM_WORKBOOK", ""),
			WorkbookSheet: envStr("ASSESS_CURRICULUM_WORKBOOK_SHEET", "Subjects"),
			YAMLPath:      envStr("ASSESS_CURRICULUM_YAML", ""),
		},
		Submission: SubmissionConfig{
			Backend: envStr("ASSESS_SUBMISSION_BACKEND", SubmissionMemory),
			URL:     envStr("ASSESS_SUBMISSION_URL", ""),
			Token:   envStr("ASSESS_SUBMISSION_TOKEN", ""),
			Timeout: envDuration("ASSESS_SUBMISSION_TIMEOUT", 30*time.Second),
		},
		Events: EventsConfig{
			Persist: envBool("ASSESS_EVENTS_PERSIST", false),
		},
		Log: LogConfig{
			Level:  envStr("ASSESS_LOG_LEVEL", "info"),
			Format: envStr("ASSESS_LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// Validate checks that the configuration is consistent.
func (c *Config) Validate() error {
	switch c.Submission.Backend {
	case SubmissionHTTP:
		if c.Submission.URL == "" {
			return fmt.Errorf("ASSESS_SUBMISSION_URL is required for the http submission backend")
		}
	case SubmissionPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("ASSESS_DATABASE_URL is required for the postgres submission backend")
		}
	case SubmissionMemory:
	default:
		return fmt.Errorf("ASSESS_SUBMISSION_BACKEND must be 'http', 'postgres' or 'memory', got %q", c.Submission.Backend)
	}

	if c.Events.Persist && c.Database.URL == "" {
		return fmt.Errorf("ASSESS_DATABASE_URL is required when ASSESS_EVENTS_PERSIST is set")
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("ASSESS_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}

	return nil
}

// SlogLevel parses the configured log level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("ASSESS_LOG_LEVEL: %w", err)
	}
	return level, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
