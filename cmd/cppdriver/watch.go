package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/cppdriver/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [DIR]",
	Short: "Keep the document cache in step with a source tree",
	Long:  "Indexes every C and C++ file under DIR into the document cache, then re-serializes files as they change until interrupted. Requires --cache-db.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if cfg.CacheDB == "" {
		return errors.New("watch needs a document cache; set --cache-db")
	}
	dir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}

	log := newLogger(os.Stderr, cfg)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, _, closeFn, err := buildDriver(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeFn()

	start := time.Now()
	res, err := d.IndexDirectory(ctx, dir)
	if err != nil {
		return err
	}
	log.Info("initial index",
		"dir", dir,
		"indexed", res.Indexed,
		"unchanged", res.Unchanged,
		"failed", res.Failed,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	w, err := watch.New(d,
		watch.WithLogger(log),
		watch.WithDebounce(cfg.Watch.Debounce),
		watch.WithIgnore(cfg.Watch.Ignore...),
	)
	if err != nil {
		return err
	}
	if err := w.Watch(ctx, dir); err != nil {
		w.Stop()
		return err
	}
	log.Info("watching", "dir", dir)

	<-ctx.Done()
	return w.Stop()
}
