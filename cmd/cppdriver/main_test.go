package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/cppdriver/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// =============================================================================
// Configuration
// =============================================================================

func TestApplyFlags_OnlyChangedFlags(t *testing.T) {
	// Binds the package-level flag variables; not parallel.
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&flagDialect, "dialect", "", "")
	cmd.Flags().StringVar(&flagCacheDB, "cache-db", "", "")
	cmd.Flags().BoolVar(&flagRoles, "roles", false, "")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "", "")
	require.NoError(t, cmd.ParseFlags([]string{"--dialect", "c", "--roles"}))

	c := config.Default()
	c.CacheDB = "from-file.db"
	applyFlags(cmd, &c)

	assert.Equal(t, "c", c.Dialect)
	assert.True(t, c.Roles)
	assert.Equal(t, "from-file.db", c.CacheDB)
	assert.Equal(t, "info", c.LogLevel)
}

func TestNewLogger_Format(t *testing.T) {
	t.Parallel()
	c := config.Default()
	c.LogFormat = "json"
	var buf bytes.Buffer
	newLogger(&buf, c).Info("hello", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "v", rec["k"])
}

func TestNewLogger_Level(t *testing.T) {
	t.Parallel()
	c := config.Default()
	c.LogLevel = "warn"
	var buf bytes.Buffer
	log := newLogger(&buf, c)
	log.Info("quiet")
	assert.Empty(t, buf.String())
	log.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}

// =============================================================================
// Driver assembly
// =============================================================================

func TestOpenStore_Disabled(t *testing.T) {
	t.Parallel()
	s, err := openStore(config.Default())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestBuildDriver_UnknownDialect(t *testing.T) {
	t.Parallel()
	c := config.Default()
	c.Dialect = "rust"
	_, _, _, err := buildDriver(context.Background(), c, discardLogger())
	assert.Error(t, err)
}

func TestBuildDriver_RolesAndCache(t *testing.T) {
	t.Parallel()
	c := config.Default()
	c.Roles = true
	c.CacheDB = filepath.Join(t.TempDir(), "cache.db")

	d, s, closeFn, err := buildDriver(context.Background(), c, discardLogger())
	require.NoError(t, err)
	defer closeFn()
	require.NotNil(t, s)

	var out bytes.Buffer
	require.NoError(t, parseContent(context.Background(), d, []byte("int main() { return 0; }\n"), false, &out))
	assert.Contains(t, out.String(), `"status":"ok"`)
	assert.Contains(t, out.String(), `"Roles":["File","Module"]`)

	var stats bytes.Buffer
	require.NoError(t, printStats(&stats, s))
	assert.Contains(t, stats.String(), "Documents:")
	assert.Contains(t, stats.String(), "1")
}

// =============================================================================
// parse
// =============================================================================

func TestParseContent_Pretty(t *testing.T) {
	t.Parallel()
	d, _, closeFn, err := buildDriver(context.Background(), config.Default(), discardLogger())
	require.NoError(t, err)
	defer closeFn()

	var out bytes.Buffer
	require.NoError(t, parseContent(context.Background(), d, []byte("int x = 1;"), true, &out))
	assert.Contains(t, out.String(), "\n  \"driver\": \"1.0.0\"")

	var resp map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestParseContent_FailureStillPrinted(t *testing.T) {
	t.Parallel()
	c := config.Default()
	c.MaxDepth = 1
	d, _, closeFn, err := buildDriver(context.Background(), c, discardLogger())
	require.NoError(t, err)
	defer closeFn()

	var out bytes.Buffer
	err = parseContent(context.Background(), d, []byte("int x = 1;"), false, &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), `"status":"fatal"`)
}

// =============================================================================
// Paths
// =============================================================================

func TestResolveTargetDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	got, err := resolveTargetDir([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestResolveTargetDir_NotADirectory(t *testing.T) {
	t.Parallel()
	file := filepath.Join(t.TempDir(), "a.cpp")
	require.NoError(t, os.WriteFile(file, []byte("int a;"), 0o644))

	_, err := resolveTargetDir([]string{file})
	assert.ErrorContains(t, err, "not a directory")
}

func TestResolveTargetDir_Missing(t *testing.T) {
	t.Parallel()
	_, err := resolveTargetDir([]string{filepath.Join(t.TempDir(), "missing")})
	assert.ErrorContains(t, err, "directory not found")
}
