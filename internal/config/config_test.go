package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// =============================================================================
// Loading
// =============================================================================

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "1.0.0", cfg.Metadata().Driver)
	assert.Equal(t, 50*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
dialect: c
language: C
language_version: "11"
cache_db: /tmp/cache.db
roles: true
log_level: debug
log_format: json
watch:
  debounce: 200ms
  ignore: [out, gen]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "c", cfg.Dialect)
	assert.Equal(t, "1.0.0", cfg.Driver, "unset keys keep their default")
	assert.Equal(t, "C", cfg.Metadata().Language)
	assert.Equal(t, "11", cfg.Metadata().LanguageVersion)
	assert.Equal(t, "/tmp/cache.db", cfg.CacheDB)
	assert.True(t, cfg.Roles)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 200*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, []string{"out", "gen"}, cfg.Watch.Ignore)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, "dialect: [c"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: parse")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("CPPDRIVER_DIALECT", "cpp")
	t.Setenv("CPPDRIVER_ROLES", "false")
	t.Setenv("CPPDRIVER_MAX_DEPTH", "64")
	t.Setenv("CPPDRIVER_WATCH_DEBOUNCE", "1s")
	t.Setenv("CPPDRIVER_WATCH_IGNORE", "a,b")
	t.Setenv("CPPDRIVER_LOG_LEVEL", "not-a-number-is-fine-here")

	cfg, err := Load(writeConfig(t, "dialect: c\nroles: true\n"))
	require.NoError(t, err)
	assert.Equal(t, "cpp", cfg.Dialect)
	assert.False(t, cfg.Roles)
	assert.Equal(t, 64, cfg.MaxDepth)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, []string{"a", "b"}, cfg.Watch.Ignore)
	require.Error(t, cfg.Validate(), "unknown log level from the environment")
}

func TestLoad_UnparsableEnvKeepsValue(t *testing.T) {
	t.Setenv("CPPDRIVER_MAX_DEPTH", "lots")
	t.Setenv("CPPDRIVER_ROLES", "maybe")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Zero(t, cfg.MaxDepth)
	assert.False(t, cfg.Roles)
}

// =============================================================================
// Validation
// =============================================================================

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"c dialect", func(c *Config) { c.Dialect = "c" }, true},
		{"unknown dialect", func(c *Config) { c.Dialect = "rust" }, false},
		{"unknown level", func(c *Config) { c.LogLevel = "loud" }, false},
		{"unknown format", func(c *Config) { c.LogFormat = "xml" }, false},
		{"empty driver", func(c *Config) { c.Driver = "" }, false},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }, false},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -time.Second }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("trace")
	assert.Error(t, err)
}
