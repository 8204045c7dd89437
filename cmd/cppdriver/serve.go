package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve newline-delimited requests on stdin",
	Long:  "Reads one JSON request per line from stdin and writes one JSON response per line to stdout until end of input.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	log := newLogger(os.Stderr, cfg)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, _, closeFn, err := buildDriver(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeFn()

	log.Info("serving", "dialect", d.Dialect(), "driver", d.Metadata().Driver)
	err = d.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
