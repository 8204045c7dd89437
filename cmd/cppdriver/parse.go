package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/cppdriver"
	"github.com/jward/cppdriver/internal/parser"
	"github.com/jward/cppdriver/internal/protocol"
)

var flagPretty bool

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Transcode one file and print its response envelope",
	Long: "Reads FILE, serializes it and prints the response envelope to stdout. " +
		"The grammar follows the file extension unless --dialect is given.",
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&flagPretty, "pretty", false, "indent the output")
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]
	c := cfg
	if !cmd.Flags().Changed("dialect") {
		if d, ok := parser.DialectForFile(path); ok {
			c.Dialect = string(d)
		}
	}

	log := newLogger(os.Stderr, c)
	ctx := context.Background()
	d, _, closeFn, err := buildDriver(ctx, c, log)
	if err != nil {
		return err
	}
	defer closeFn()

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return parseContent(ctx, d, content, flagPretty, cmd.OutOrStdout())
}

// parseContent writes the envelope for content to w. A non-ok envelope is
// still written, and reported as an error.
func parseContent(ctx context.Context, d *cppdriver.Driver, content []byte, pretty bool, w io.Writer) error {
	line, err := json.Marshal(protocol.Request{Action: "ParseAST", Content: string(content)})
	if err != nil {
		return err
	}
	resp := d.Process(ctx, line)
	out, err := resp.Encode()
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	if pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, out, "", "  "); err != nil {
			return fmt.Errorf("indenting response: %w", err)
		}
		out = buf.Bytes()
	}
	if _, err := fmt.Fprintf(w, "%s\n", out); err != nil {
		return err
	}
	if resp.Status != protocol.StatusOK {
		return fmt.Errorf("transcoding failed with status %s: %s", resp.Status, resp.Errors[1])
	}
	return nil
}
