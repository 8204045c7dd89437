// Package server exposes the request/response contract over HTTP. One POST
// body is one request line; the response body is its envelope.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jward/cppdriver/internal/protocol"
	"github.com/jward/cppdriver/internal/store"
)

// DefaultMaxBodyBytes bounds a /parse request body.
const DefaultMaxBodyBytes = 32 << 20

// Processor answers one request line. *cppdriver.Driver implements it.
type Processor interface {
	Process(ctx context.Context, line []byte) protocol.Response
	Metadata() protocol.Metadata
}

// Server is the HTTP front-end of the driver.
type Server struct {
	router  chi.Router
	proc    Processor
	store   *store.Store
	log     *slog.Logger
	maxBody int64
}

// Option configures a Server.
type Option func(*Server)

// WithStore enables GET /cache/stats.
func WithStore(s *store.Store) Option {
	return func(srv *Server) {
		srv.store = s
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(srv *Server) {
		if n > 0 {
			srv.maxBody = n
		}
	}
}

// New creates and configures the HTTP server.
func New(proc Processor, log *slog.Logger, opts ...Option) *Server {
	s := &Server{
		proc:    proc,
		log:     log,
		maxBody: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Post("/parse", s.handleParse)
	r.Get("/cache/stats", s.handleCacheStats)

	s.router = r
}
