// Package server exposes the photosheet pipeline over HTTP.
//
// Routes:
//
//	GET  /api/health   liveness probe
//	GET  /api/version  build information
//	GET  /api/catalog  size standards and paper sizes
//	POST /api/resolve  photo standard to pixel size (JSON)
//	POST /api/preview  sheet plan without a photo (JSON)
//	POST /api/fit      single fitted photo (multipart upload)
//	POST /api/sheet    full print sheet (multipart upload)
//	GET  /metrics      Prometheus metrics, when enabled
//
// Uploads are multipart forms with the photo in the "photo" field and the
// pipeline options as JSON in the "options" field. Options missing from the
// request fall back to the server's sheet defaults.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/photosheet/pkg/catalog"
	"github.com/matzehuels/photosheet/pkg/pipeline"
)

// DefaultMaxUpload caps uploaded photos when no limit is configured.
const DefaultMaxUpload = 20 << 20

// Server serves the HTTP API. It is safe for concurrent use.
type Server struct {
	runner    *pipeline.Runner
	catalog   *catalog.Catalog
	defaults  pipeline.Options
	logger    *log.Logger
	metrics   http.Handler
	maxUpload int64
}

// Option configures a Server.
type Option func(*Server)

// WithCatalog sets the size and paper catalog. Defaults to the built-in one.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Server) { s.catalog = c }
}

// WithDefaults sets the options every request starts from.
func WithDefaults(o pipeline.Options) Option {
	return func(s *Server) { s.defaults = o }
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithMaxUpload caps the size of uploaded photos in bytes.
func WithMaxUpload(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// New creates a server around runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:    runner,
		maxUpload: DefaultMaxUpload,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalog == nil {
		s.catalog = catalog.Default()
	}
	if s.logger == nil {
		s.logger = runner.Logger
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.instrument)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)
		r.Get("/catalog", s.handleCatalog)
		r.Post("/resolve", s.handleResolve)
		r.Post("/preview", s.handlePreview)
		r.Post("/fit", s.handleFit)
		r.Post("/sheet", s.handleSheet)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, notFound(r.URL.Path))
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully, giving in-flight requests up to shutdownTimeout to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

const shutdownTimeout = 15 * time.Second
