// Package server assembles the pagecrate HTTP server: the
// S3-compatible bucket surface plus the JSON management API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/3leaps/pagecrate/internal/server/handlers"
	"github.com/3leaps/pagecrate/internal/server/middleware"
	"github.com/3leaps/pagecrate/pkg/mirror"
)

// Config configures the HTTP server.
type Config struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// APIKey enables boundary authentication when non-empty.
	APIKey string
}

// Server serves the pagecrate HTTP surface.
type Server struct {
	config Config
	router chi.Router
	logger *zap.Logger
}

// New assembles the router around the mirror.
func New(cfg Config, m *mirror.Mirror, info handlers.VersionInfo, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s3h := &handlers.S3{Mirror: m, Logger: logger}
	api := &handlers.API{Mirror: m, Logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/health", handlers.Health)
	r.Get("/version", handlers.Version(info))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.APIKey))

		r.Route("/api", func(r chi.Router) {
			r.Get("/notion/id", api.SetRootID)
			r.Get("/refresh", api.Refresh)
			r.Post("/refresh", api.Refresh)
			r.Get("/files", api.Files)
			r.Get("/folders", api.Folders)
			r.Get("/file/{id}", api.FileByID)
			r.Get("/folder/{id}", api.FolderByID)
		})

		r.Get("/{bucket}", s3h.ListBucket)
		r.Get("/{bucket}/*", s3h.GetObject)
	})

	return &Server{config: cfg, router: r, logger: logger}
}

// Handler returns the assembled router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the configured listen port.
func (s *Server) Port() int {
	return s.config.Port
}

// Run serves until ctx is cancelled, then shuts down gracefully within
// the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
