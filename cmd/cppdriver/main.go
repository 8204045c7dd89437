package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/cppdriver"
	"github.com/jward/cppdriver/internal/config"
	"github.com/jward/cppdriver/internal/parser"
	"github.com/jward/cppdriver/internal/runtime"
	"github.com/jward/cppdriver/internal/store"
	"github.com/jward/cppdriver/scripts"
)

var (
	flagConfig   string
	flagDialect  string
	flagCacheDB  string
	flagRoles    bool
	flagLogLevel string
)

// cfg is loaded once per invocation by the root command's pre-run hook.
var cfg config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cppdriver",
	Short: "Transcode C and C++ source into UAST-ready JSON",
	Long: "cppdriver parses C and C++ with tree-sitter and writes one JSON document per request. " +
		"Without a subcommand it serves newline-delimited requests on stdin.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
	RunE: runServe,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default: ./"+config.DefaultFile+" when present)")
	pf.StringVar(&flagDialect, "dialect", "", "grammar: cpp|c")
	pf.StringVar(&flagCacheDB, "cache-db", "", "SQLite document cache path (empty disables it)")
	pf.BoolVar(&flagRoles, "roles", false, "annotate documents with semantic roles")
	pf.StringVar(&flagLogLevel, "log-level", "", "debug|info|warn|error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(httpCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(cacheCmd)
}

// loadConfig reads the config file and environment, then applies the flags
// that were set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := flagConfig
	if path == "" {
		path = config.FindFile()
	}
	c, err := config.Load(path)
	if err != nil {
		return c, err
	}
	applyFlags(cmd, &c)
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("dialect") {
		c.Dialect = flagDialect
	}
	if flags.Changed("cache-db") {
		c.CacheDB = flagCacheDB
	}
	if flags.Changed("roles") {
		c.Roles = flagRoles
	}
	if flags.Changed("log-level") {
		c.LogLevel = flagLogLevel
	}
}

// newLogger writes to stderr; stdout carries the protocol.
func newLogger(w io.Writer, c config.Config) *slog.Logger {
	level, _ := config.ParseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openStore opens and migrates the configured document cache. It returns
// nil when none is configured.
func openStore(c config.Config) (*store.Store, error) {
	if c.CacheDB == "" {
		return nil, nil
	}
	s, err := store.NewStore(c.CacheDB)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrating cache: %w", err)
	}
	return s, nil
}

// buildDriver assembles a Driver from c. The returned close function
// releases the store, if any.
func buildDriver(ctx context.Context, c config.Config, log *slog.Logger) (*cppdriver.Driver, *store.Store, func(), error) {
	dialect, err := parser.ParseDialect(c.Dialect)
	if err != nil {
		return nil, nil, nil, err
	}
	opts := []cppdriver.Option{
		cppdriver.WithDialect(dialect),
		cppdriver.WithMetadata(c.Metadata()),
		cppdriver.WithLogger(log),
		cppdriver.WithMaxDepth(c.MaxDepth),
	}

	if c.Roles {
		var rtOpts []runtime.RuntimeOption
		rtOpts = append(rtOpts, runtime.WithRuntimeLogger(log))
		// Scripts come from the binary unless a directory is configured.
		if c.ScriptsDir == "" {
			rtOpts = append(rtOpts, runtime.WithRuntimeFS(scripts.FS))
		}
		rules, err := runtime.NewRuntime(c.ScriptsDir, rtOpts...).LoadRules(ctx, string(parser.DialectCPP))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("loading roles: %w", err)
		}
		log.Debug("roles loaded", "rules", rules.Len())
		opts = append(opts, cppdriver.WithRules(rules))
	}

	s, err := openStore(c)
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() {}
	if s != nil {
		opts = append(opts, cppdriver.WithStore(s))
		closeFn = func() { s.Close() }
	}

	d, err := cppdriver.New(opts...)
	if err != nil {
		closeFn()
		return nil, nil, nil, fmt.Errorf("creating driver: %w", err)
	}
	return d, s, closeFn, nil
}
