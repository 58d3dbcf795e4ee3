package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"media-tags/internal/database"
	"media-tags/internal/logging"
	"media-tags/internal/tags"
)

// Defaults applied before the file and the environment.
const (
	DefaultDriver          = database.DriverSQLite
	DefaultPath            = "./tags.db"
	DefaultRandomStrategy  = "sql"
	DefaultCollectInterval = time.Minute
)

// Config holds all tagctl configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Query    QueryConfig    `yaml:"query"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig selects and tunes the session driver.
type DatabaseConfig struct {
	Driver       string `yaml:"driver"`
	DSN          string `yaml:"dsn"`
	Path         string `yaml:"path"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// QueryConfig holds content query defaults.
type QueryConfig struct {
	RandomStrategy string `yaml:"random_strategy"`
	DefaultLimit   int    `yaml:"default_limit"`
}

// MetricsConfig controls the periodic stats collector.
type MetricsConfig struct {
	CollectInterval time.Duration `yaml:"collect_interval"`
}

// LogConfig selects the log level and encoding.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: DefaultDriver,
			Path:   DefaultPath,
		},
		Query: QueryConfig{
			RandomStrategy: DefaultRandomStrategy,
		},
		Metrics: MetricsConfig{
			CollectInterval: DefaultCollectInterval,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path and
// the environment. A missing file is not an error; an empty path skips the
// file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logging.Debug("Config file %s not found, using defaults", path)
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Database.Driver = getEnv("TAGS_DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("TAGS_DB_DSN", c.Database.DSN)
	c.Database.Path = getEnv("TAGS_DB_PATH", c.Database.Path)
	c.Database.MaxOpenConns = getEnvInt("TAGS_DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Query.RandomStrategy = getEnv("TAGS_RANDOM_STRATEGY", c.Query.RandomStrategy)
	c.Query.DefaultLimit = getEnvInt("TAGS_DEFAULT_LIMIT", c.Query.DefaultLimit)
	c.Metrics.CollectInterval = getEnvDuration("TAGS_COLLECT_INTERVAL", c.Metrics.CollectInterval)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Validate rejects unknown drivers and strategies and missing connection
// targets. Driver aliases are replaced with their canonical name.
func (c *Config) Validate() error {
	dialect, err := database.DialectFor(c.Database.Driver)
	if err != nil {
		return err
	}
	c.Database.Driver = dialect.Name()

	switch c.Database.Driver {
	case database.DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database.path is required for sqlite3")
		}
	case database.DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for postgres")
		}
	}

	if _, err := tags.ParseRandomStrategy(c.Query.RandomStrategy); err != nil {
		return err
	}
	if c.Query.DefaultLimit < 0 {
		return fmt.Errorf("query.default_limit must be non-negative, got %d", c.Query.DefaultLimit)
	}
	if c.Metrics.CollectInterval <= 0 {
		return fmt.Errorf("metrics.collect_interval must be positive, got %s", c.Metrics.CollectInterval)
	}
	return nil
}

// DatabaseOptions converts the database section for database.New.
func (c *Config) DatabaseOptions() database.Options {
	return database.Options{
		Driver:       c.Database.Driver,
		Path:         c.Database.Path,
		DSN:          c.Database.DSN,
		MaxOpenConns: c.Database.MaxOpenConns,
	}
}

// RandomStrategy returns the parsed query.random_strategy.
func (c *Config) RandomStrategy() tags.RandomStrategy {
	s, err := tags.ParseRandomStrategy(c.Query.RandomStrategy)
	if err != nil {
		return tags.RandomSQL
	}
	return s
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid duration value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
