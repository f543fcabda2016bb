package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/streamsafe/internal/obs"
	"github.com/me/streamsafe/internal/ui"
)

// Server is the StreamSafe console HTTP server. It owns the router and
// the cross-cutting middleware; the views themselves live in the ui
// package.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	startTime time.Time
}

// New creates a new Server with all routes registered.
func New(u *ui.UI, logger *slog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		startTime: time.Now(),
	}
	s.routes(u)
	return s
}

func (s *Server) routes(u *ui.UI) {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))
	r.Use(obs.Instrument)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", obs.Handler())

	u.RegisterRoutes(r)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}
