package cppdriver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/jward/cppdriver/internal/comments"
	"github.com/jward/cppdriver/internal/macros"
	"github.com/jward/cppdriver/internal/parser"
	"github.com/jward/cppdriver/internal/protocol"
	"github.com/jward/cppdriver/internal/runtime"
	"github.com/jward/cppdriver/internal/serializer"
	"github.com/jward/cppdriver/internal/store"
)

// Driver answers transcoding requests. A Driver is safe for concurrent use:
// per-request state is built inside each call, and the accessor cache, the
// parsers, the rules and the store are shared.
type Driver struct {
	dialect  parser.Dialect
	meta     protocol.Metadata
	log      *slog.Logger
	cache    *serializer.Cache
	store    *store.Store
	rules    *runtime.Rules
	maxDepth int

	parsers     map[parser.Dialect]*parser.Parser
	fingerprint string
}

// Option configures a Driver.
type Option func(*Driver)

// WithDialect selects the grammar requests are parsed with. The default is
// C++.
func WithDialect(d parser.Dialect) Option {
	return func(dr *Driver) {
		dr.dialect = d
	}
}

// WithMetadata overrides the driver, language and version fields of every
// response.
func WithMetadata(m protocol.Metadata) Option {
	return func(dr *Driver) {
		dr.meta = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(dr *Driver) {
		if l != nil {
			dr.log = l
		}
	}
}

// WithCache shares an accessor cache between drivers.
func WithCache(c *serializer.Cache) Option {
	return func(dr *Driver) {
		if c != nil {
			dr.cache = c
		}
	}
}

// WithStore answers repeated content from s and records indexed files in
// it. The Driver does not close s.
func WithStore(s *store.Store) Option {
	return func(dr *Driver) {
		dr.store = s
	}
}

// WithRules annotates every document with roles from r.
func WithRules(r *runtime.Rules) Option {
	return func(dr *Driver) {
		dr.rules = r
	}
}

// WithMaxDepth bounds the depth of serialized trees.
func WithMaxDepth(n int) Option {
	return func(dr *Driver) {
		dr.maxDepth = n
	}
}

// New creates a Driver. With a store configured, cached documents produced
// under a different fingerprint are dropped.
func New(opts ...Option) (*Driver, error) {
	d := &Driver{
		dialect:  parser.DialectCPP,
		meta:     protocol.DefaultMetadata,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		cache:    serializer.NewCache(),
		maxDepth: serializer.DefaultMaxDepth,
		parsers:  make(map[parser.Dialect]*parser.Parser),
	}
	for _, opt := range opts {
		opt(d)
	}

	for _, dialect := range []parser.Dialect{parser.DialectCPP, parser.DialectC} {
		p, err := parser.New(dialect, parser.WithLogger(d.log))
		if err != nil {
			return nil, fmt.Errorf("cppdriver: %w", err)
		}
		d.parsers[dialect] = p
	}
	if _, ok := d.parsers[d.dialect]; !ok {
		return nil, fmt.Errorf("cppdriver: unsupported dialect %q", d.dialect)
	}

	rulesHash := ""
	if d.rules != nil {
		rulesHash = d.rules.Hash
	}
	d.fingerprint = store.Fingerprint(map[string]string{
		"driver":          d.meta.Driver,
		"language":        d.meta.Language,
		"languageVersion": d.meta.LanguageVersion,
		"roles":           rulesHash,
	})

	if d.store != nil {
		invalidated, err := d.store.SyncFingerprint(d.fingerprint)
		if err != nil {
			return nil, fmt.Errorf("cppdriver: %w", err)
		}
		if invalidated {
			d.log.Info("document cache invalidated", "fingerprint", d.fingerprint[:12])
		}
	}
	return d, nil
}

// Dialect reports the grammar requests are parsed with.
func (d *Driver) Dialect() parser.Dialect { return d.dialect }

// Metadata reports the fixed response fields.
func (d *Driver) Metadata() protocol.Metadata { return d.meta }

// Fingerprint identifies the driver configuration documents were produced
// under.
func (d *Driver) Fingerprint() string { return d.fingerprint }

// Process answers one request line. It never fails; failures are reported
// in the envelope.
func (d *Driver) Process(ctx context.Context, line []byte) protocol.Response {
	resp, _ := d.handle(ctx, line)
	return resp
}

// handle answers line and also returns the failure behind a non-ok
// envelope, so the loop can decide whether to continue.
func (d *Driver) handle(ctx context.Context, line []byte) (protocol.Response, error) {
	req, err := protocol.DecodeRequest(line)
	if err != nil {
		return d.failure(err), err
	}
	doc, err := d.Transcode(ctx, []byte(req.Content))
	if err != nil {
		return d.failure(err), err
	}
	return protocol.OK(d.meta, doc), nil
}

func (d *Driver) failure(err error) protocol.Response {
	resp := protocol.Failure(d.meta, err)
	if resp.Status == protocol.StatusFatal {
		d.log.Error("request failed", "kind", resp.Errors[0], "err", err)
	} else {
		d.log.Warn("request failed", "kind", resp.Errors[0], "err", err)
	}
	return resp
}

// Transcode serializes src with the driver's dialect and returns the
// document. Failures are *protocol.SerializationError values.
func (d *Driver) Transcode(ctx context.Context, src []byte) (json.RawMessage, error) {
	return d.transcodeCached(ctx, d.dialect, src)
}

func (d *Driver) transcodeCached(ctx context.Context, dialect parser.Dialect, src []byte) (json.RawMessage, error) {
	if d.store == nil {
		return d.transcode(ctx, dialect, src)
	}

	key := store.DocumentKey(src, string(dialect), d.fingerprint)
	cached, err := d.store.GetDocument(key)
	if err != nil {
		d.log.Warn("document cache read failed", "err", err)
	} else if cached != nil {
		d.log.Debug("document cache hit", "key", key[:12])
		return cached.Body, nil
	}

	body, err := d.transcode(ctx, dialect, src)
	if err != nil {
		return nil, err
	}
	err = d.store.PutDocument(&store.Document{
		Key:       key,
		Dialect:   string(dialect),
		Status:    string(protocol.StatusOK),
		Body:      body,
		CreatedAt: time.Now(),
	})
	if err != nil {
		d.log.Warn("document cache write failed", "err", err)
	}
	return body, nil
}

func (d *Driver) transcode(ctx context.Context, dialect parser.Dialect, src []byte) (body json.RawMessage, err error) {
	defer func() {
		if v := recover(); v != nil {
			body = nil
			err = &protocol.SerializationError{Err: &protocol.PanicError{Value: v, Stack: debug.Stack()}}
		}
	}()

	res, err := d.parsers[dialect].Parse(ctx, src)
	if err != nil {
		return nil, &protocol.SerializationError{Err: err}
	}
	table, err := comments.Build(res.Root, res.Comments, res.AllComments)
	if err != nil {
		return nil, &protocol.SerializationError{Err: err}
	}

	s := serializer.New(d.cache, serializer.Request{
		Macros:     macros.Build(res.Macros),
		Comments:   table,
		Directives: res.Directives,
	}, serializer.WithLogger(d.log), serializer.WithMaxDepth(d.maxDepth))

	doc, err := s.Serialize(res.Root)
	if err != nil {
		return nil, &protocol.SerializationError{Err: err}
	}
	if d.rules != nil {
		d.rules.Annotate(doc)
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return nil, &protocol.SerializationError{Err: err}
	}
	return b, nil
}
