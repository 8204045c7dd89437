package cppdriver

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jward/cppdriver/internal/protocol"
)

// Run serves requests from r, one per line, writing one response line to w
// for each. Blank lines are skipped. Run returns nil at end of input. It
// returns a *protocol.SinkError when a response cannot be written and the
// failure itself after a fatal request, once its envelope is written.
// Recoverable failures are answered and the loop continues.
//
// Run returns ctx.Err() as soon as ctx is done, including while it waits for
// input. A request that has been handed to the transcoder is always
// answered first.
func (d *Driver) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	out := bufio.NewWriter(w)
	done := make(chan struct{})
	defer close(done)
	lines := readLines(bufio.NewReader(r), done)

	for served := 0; ; {
		if err := ctx.Err(); err != nil {
			return err
		}

		var next readResult
		select {
		case <-ctx.Done():
			d.log.Debug("input wait cancelled", "served", served)
			return ctx.Err()
		case next = <-lines:
		}

		if len(bytes.TrimSpace(next.line)) > 0 {
			resp, err := d.handle(ctx, next.line)
			if werr := writeResponse(out, resp); werr != nil {
				d.log.Error("response not written", "err", werr)
				return werr
			}
			served++
			if err != nil && protocol.Classify(err) == protocol.StatusFatal {
				d.log.Error("stopping after fatal failure", "served", served)
				return err
			}
		}

		if errors.Is(next.err, io.EOF) {
			d.log.Debug("end of input", "served", served)
			return nil
		}
		if next.err != nil {
			return fmt.Errorf("cppdriver: read request: %w", next.err)
		}
	}
}

type readResult struct {
	line []byte
	err  error
}

// readLines reads newline-terminated lines from in on its own goroutine so
// the loop can stop waiting when its context ends. The goroutine exits after
// a read error or once done is closed; a read blocked on in ends only when
// in does.
func readLines(in *bufio.Reader, done <-chan struct{}) <-chan readResult {
	ch := make(chan readResult)
	go func() {
		defer close(ch)
		for {
			line, err := in.ReadBytes('\n')
			select {
			case ch <- readResult{line: line, err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return ch
}

// writeResponse writes resp as one line and flushes it.
func writeResponse(w *bufio.Writer, resp protocol.Response) error {
	b, err := resp.Encode()
	if err != nil {
		return &protocol.SinkError{Err: err}
	}
	if _, err := w.Write(b); err != nil {
		return &protocol.SinkError{Err: err}
	}
	if err := w.WriteByte('\n'); err != nil {
		return &protocol.SinkError{Err: err}
	}
	if err := w.Flush(); err != nil {
		return &protocol.SinkError{Err: err}
	}
	return nil
}
