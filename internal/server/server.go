// Package server implements the HTTP API for the Aplus setup engine.
package server

import (
	"context"
	"net/http"
	"time"

	"aplus/internal/app"
	"aplus/internal/common"
)

// Server wraps the HTTP server with application dependencies.
type Server struct {
	app          *app.App
	server       *http.Server
	logger       *common.Logger
	shutdownChan chan struct{}
}

// NewServer creates a new HTTP server.
func NewServer(application *app.App) *Server {
	s := &Server{
		app:    application,
		logger: application.Logger,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	handler := applyMiddleware(mux, application.Logger, application.Config)

	s.server = &http.Server{
		Addr:         application.Config.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// SetShutdownChannel sets the channel used to signal server shutdown.
func (s *Server) SetShutdownChannel(ch chan struct{}) {
	s.shutdownChan = ch
}

// Handler returns the server's root handler, including middleware. Used by
// tests to exercise the full stack without a listener.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server. Blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
