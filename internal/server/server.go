// Package server exposes the HTTP API.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/praxisllmlab/fabsearch/internal/health"
	"github.com/praxisllmlab/fabsearch/internal/provider"
	"github.com/praxisllmlab/fabsearch/internal/search"
	"github.com/praxisllmlab/fabsearch/internal/suggest"
)

// Server holds dependencies for the HTTP API server.
type Server struct {
	Router   chi.Router
	search   *search.Service
	registry *provider.Registry
	tracker  *health.Tracker
	store    *suggest.Store
}

// Config holds the collaborators for creating a new Server.
type Config struct {
	Search   *search.Service
	Registry *provider.Registry
	Tracker  *health.Tracker
	Store    *suggest.Store
}

// NewServer creates a chi router with all routes configured.
func NewServer(cfg Config) *Server {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)

	s := &Server{
		Router:   r,
		search:   cfg.Search,
		registry: cfg.Registry,
		tracker:  cfg.Tracker,
		store:    cfg.Store,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.Router

	r.Get("/health", s.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.Search)
		r.Get("/suggest", s.Suggest)
		r.Get("/sources", s.Sources)
		r.Get("/item", s.Item)
		r.Get("/health/providers", s.ProviderHealth)
		r.Get("/metrics/providers", s.ProviderMetrics)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
