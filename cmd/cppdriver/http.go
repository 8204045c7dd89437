package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/cppdriver/internal/server"
)

var flagAddr string

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Serve requests over HTTP",
	Long:  "Serves POST /parse with the same request and response objects as the stdin protocol, plus GET /health and GET /cache/stats.",
	Args:  cobra.NoArgs,
	RunE:  runHTTP,
}

func init() {
	httpCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (default from config)")
}

func runHTTP(cmd *cobra.Command, args []string) error {
	log := newLogger(os.Stderr, cfg)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, s, closeFn, err := buildDriver(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeFn()

	addr := cfg.HTTPAddr
	if flagAddr != "" {
		addr = flagAddr
	}
	var opts []server.Option
	if s != nil {
		opts = append(opts, server.WithStore(s))
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(d, log, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
