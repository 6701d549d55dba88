// Package server wires the HTTP routes of the index service.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/3leaps/simpleindex/internal/errors"
	"github.com/3leaps/simpleindex/internal/server/handlers"
	"github.com/3leaps/simpleindex/internal/server/middleware"
)

// Timeouts configures the underlying http.Server.
type Timeouts struct {
	Read     time.Duration
	Write    time.Duration
	Idle     time.Duration
	Shutdown time.Duration
}

// DefaultTimeouts returns the timeouts used when none are configured.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Read:     15 * time.Second,
		Write:    5 * time.Minute,
		Idle:     60 * time.Second,
		Shutdown: 10 * time.Second,
	}
}

// Server is the index HTTP server.
type Server struct {
	host     string
	port     int
	router   chi.Router
	timeouts Timeouts
	logger   *zap.Logger

	index       handlers.Linker
	objects     handlers.ObjectSource
	chunkSize   int
	downloads   handlers.DownloadMetrics
	metricsPath string
	metricsHTTP http.Handler

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithIndex enables the bucket and package index pages.
func WithIndex(index handlers.Linker) Option {
	return func(s *Server) { s.index = index }
}

// WithDownloads enables file downloads, streamed in chunkSize reads.
func WithDownloads(objects handlers.ObjectSource, chunkSize int, metrics handlers.DownloadMetrics) Option {
	return func(s *Server) {
		s.objects = objects
		s.chunkSize = chunkSize
		s.downloads = metrics
	}
}

// WithMetrics exposes h at path.
func WithMetrics(path string, h http.Handler) Option {
	return func(s *Server) {
		s.metricsPath = path
		s.metricsHTTP = h
	}
}

// WithLogger sets the access and handler logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithTimeouts overrides DefaultTimeouts.
func WithTimeouts(t Timeouts) Option {
	return func(s *Server) { s.timeouts = t }
}

// New creates a server listening on host:port.
func New(host string, port int, opts ...Option) *Server {
	s := &Server{
		host:     host,
		port:     port,
		timeouts: DefaultTimeouts(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(s.logger))
	r.Use(middleware.Recovery(s.logger))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apperrors.RespondWithError(w, req, apperrors.NotFound("resource not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		apperrors.RespondWithError(w, req, apperrors.MethodNotAllowed("method not allowed"))
	})

	r.Get("/health", handlers.HealthHandler)
	r.Get("/health/live", handlers.LivenessHandler)
	r.Get("/health/ready", handlers.ReadinessHandler)
	r.Get("/health/startup", handlers.StartupHandler)
	r.Get("/version", handlers.VersionHandler)

	if s.metricsHTTP != nil && s.metricsPath != "" {
		r.Method(http.MethodGet, s.metricsPath, s.metricsHTTP)
	}

	if s.index != nil {
		ih := handlers.NewIndexHandler(s.index, s.logger)
		r.Get("/{bucket}/simple", handlers.AddTrailingSlash)
		r.Get("/{bucket}/simple/", ih.Bucket)
		r.Get("/{bucket}/simple/{package}", handlers.AddTrailingSlash)
		r.Get("/{bucket}/simple/{package}/", ih.Package)
	}
	if s.objects != nil {
		dh := handlers.NewDownloadHandler(s.objects, s.chunkSize, s.logger, s.downloads)
		r.Method(http.MethodGet, "/{bucket}/simple/{package}/{file}", dh)
		r.Head("/{bucket}/simple/{package}/{file}", dh.Head)
	}

	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// Addr returns host:port.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

// Start listens and serves until Shutdown is called. It returns nil after a
// clean shutdown.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.timeouts.Read,
		WriteTimeout: s.timeouts.Write,
		IdleTimeout:  s.timeouts.Idle,
	}
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server within the shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Shutdown)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
