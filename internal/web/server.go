// Package web exposes the recognition pipeline over HTTP.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mkadlec/facematch/internal/web/handlers"
	"github.com/mkadlec/facematch/internal/web/middleware"
)

// Server is the HTTP server wrapping the recognition API.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	deps       Dependencies
}

// Dependencies are the domain services the API handlers need.
type Dependencies struct {
	Recognizer handlers.FaceRecognizer
	Catalog    handlers.Catalog
	Searcher   handlers.SimilarSearcher
	Threshold  float64
}

// NewServer creates a web server listening on host:port.
func NewServer(host string, port int, deps Dependencies) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		deps:   deps,
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(2 * time.Minute))
	r.Use(middleware.CORS())

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // uploads of large photos
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
