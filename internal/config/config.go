// Package config loads driver settings from a YAML file overlaid by
// CPPDRIVER_* environment variables. Command-line flags are applied last by
// the caller.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jward/cppdriver/internal/parser"
	"github.com/jward/cppdriver/internal/protocol"
)

// DefaultFile is read when no config path is given and it exists in the
// working directory.
const DefaultFile = "cppdriver.yaml"

const envPrefix = "CPPDRIVER_"

type Config struct {
	Dialect string `yaml:"dialect"`

	// Response metadata
	Driver          string `yaml:"driver"`
	Language        string `yaml:"language"`
	LanguageVersion string `yaml:"language_version"`

	// Document cache; empty disables it
	CacheDB string `yaml:"cache_db"`

	// Role annotation
	Roles      bool   `yaml:"roles"`
	ScriptsDir string `yaml:"scripts_dir"`

	MaxDepth int `yaml:"max_depth"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	HTTPAddr string `yaml:"http_addr"`

	Watch WatchConfig `yaml:"watch"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	Ignore   []string      `yaml:"ignore"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Dialect:         string(parser.DialectCPP),
		Driver:          protocol.DefaultMetadata.Driver,
		Language:        protocol.DefaultMetadata.Language,
		LanguageVersion: protocol.DefaultMetadata.LanguageVersion,
		LogLevel:        "info",
		LogFormat:       "text",
		HTTPAddr:        "127.0.0.1:8091",
		Watch: WatchConfig{
			Debounce: 50 * time.Millisecond,
		},
	}
}

// Load returns the defaults overlaid by the file at path (when path is not
// empty) and then by the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// FindFile returns DefaultFile when it exists in the working directory.
func FindFile() string {
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile
	}
	return ""
}

func (c *Config) applyEnv() {
	c.Dialect = envOr("DIALECT", c.Dialect)
	c.Driver = envOr("DRIVER_VERSION", c.Driver)
	c.Language = envOr("LANGUAGE", c.Language)
	c.LanguageVersion = envOr("LANGUAGE_VERSION", c.LanguageVersion)
	c.CacheDB = envOr("CACHE_DB", c.CacheDB)
	c.Roles = envBool("ROLES", c.Roles)
	c.ScriptsDir = envOr("SCRIPTS_DIR", c.ScriptsDir)
	c.MaxDepth = envInt("MAX_DEPTH", c.MaxDepth)
	c.LogLevel = envOr("LOG_LEVEL", c.LogLevel)
	c.LogFormat = envOr("LOG_FORMAT", c.LogFormat)
	c.HTTPAddr = envOr("HTTP_ADDR", c.HTTPAddr)
	c.Watch.Debounce = envDuration("WATCH_DEBOUNCE", c.Watch.Debounce)
	if v := os.Getenv(envPrefix + "WATCH_IGNORE"); v != "" {
		c.Watch.Ignore = strings.Split(v, ",")
	}
}

// Validate rejects settings the driver cannot run with.
func (c Config) Validate() error {
	if _, err := parser.ParseDialect(c.Dialect); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	if c.Driver == "" || c.Language == "" {
		return errors.New("config: driver and language must not be empty")
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("config: max_depth must not be negative, got %d", c.MaxDepth)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("config: watch debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return nil
}

// Metadata returns the response metadata the settings describe.
func (c Config) Metadata() protocol.Metadata {
	return protocol.Metadata{
		Driver:          c.Driver,
		Language:        c.Language,
		LanguageVersion: c.LanguageVersion,
	}
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", s)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(envPrefix + key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(envPrefix + key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(envPrefix + key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
