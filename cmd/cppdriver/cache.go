package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jward/cppdriver/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the document cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print document cache statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openCache()
		if err != nil {
			return err
		}
		defer s.Close()
		return printStats(cmd.OutOrStdout(), s)
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openCache()
		if err != nil {
			return err
		}
		defer s.Close()
		n, err := s.DeleteDocuments()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Deleted %d documents\n", n)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func openCache() (*store.Store, error) {
	if cfg.CacheDB == "" {
		return nil, errors.New("no document cache configured; set --cache-db")
	}
	return openStore(cfg)
}

func printStats(w io.Writer, s *store.Store) error {
	st, err := s.Stats()
	if err != nil {
		return err
	}
	fp := st.Fingerprint
	if len(fp) > 12 {
		fp = fp[:12]
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Documents:\t%d\n", st.Documents)
	fmt.Fprintf(tw, "Bytes:\t%d\n", st.Bytes)
	fmt.Fprintf(tw, "Files:\t%d\n", st.Files)
	fmt.Fprintf(tw, "Fingerprint:\t%s\n", fp)
	return tw.Flush()
}

// resolveTargetDir returns the absolute path of the directory to work on.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}
