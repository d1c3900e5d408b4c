package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/davidbz/ideaforge/internal/config"
	"github.com/davidbz/ideaforge/internal/http/middleware"
	"github.com/davidbz/ideaforge/internal/observability"
)

// Server represents the HTTP server.
type Server struct {
	config      config.ServerConfig
	handler     *Handler
	metrics     http.Handler
	middlewares middleware.Middleware
	srv         *http.Server
}

// NewServer creates a new HTTP server. A nil metrics handler leaves
// /metrics unregistered.
func NewServer(
	cfg *config.ServerConfig,
	handler *Handler,
	metrics http.Handler,
	middlewares middleware.Middleware,
) *Server {
	s := &Server{
		config:      *cfg,
		handler:     handler,
		metrics:     metrics,
		middlewares: middlewares,
	}
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Routes(),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}
	return s
}

// Routes returns the routed handler wrapped in the middleware chain.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/ideas/analyze", s.handler.HandleAnalyze)
	mux.HandleFunc("GET /v1/ideas", s.handler.HandleHistory)
	mux.HandleFunc("GET /v1/analyzers", s.handler.HandleAnalyzers)
	mux.HandleFunc("GET /v1/cache/stats", s.handler.HandleCacheStats)
	mux.HandleFunc("POST /v1/cache/cleanup", s.handler.HandleCacheCleanup)
	mux.HandleFunc("DELETE /v1/cache", s.handler.HandleCacheClear)
	mux.HandleFunc("GET /health", s.handler.HandleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}

	if s.middlewares == nil {
		return mux
	}
	return s.middlewares(mux)
}

// Start starts the HTTP server and blocks until it stops. It returns nil
// once Shutdown has been called, even if Shutdown ran first.
func (s *Server) Start() error {
	ctx := context.Background()
	observability.FromContext(ctx).Info("starting HTTP server", observability.Int("port", s.config.Port))

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	observability.FromContext(ctx).Info("shutting down HTTP server")

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
