// Package web provides the HTTP server and JSON handlers for the permit
// application and order APIs.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/krishdev/permithub/internal/config"
	"github.com/krishdev/permithub/internal/reconcile"
	"github.com/krishdev/permithub/internal/store"
	mw "github.com/krishdev/permithub/internal/web/middleware"
)

// SyncRunner triggers one reconciliation run on demand.
type SyncRunner interface {
	Run(ctx context.Context) (reconcile.Result, error)
}

// Server is the HTTP server for the service.
type Server struct {
	apps   *store.ApplicationRepo
	orders *store.OrderRepo
	sync   SyncRunner // nil when sheet sync is disabled
	cfg    *config.ServerConfig
	router *chi.Mux
	server *http.Server
}

// NewServer creates a Server over the given repositories. sync may be nil;
// the reconcile endpoint then reports the job as disabled.
func NewServer(apps *store.ApplicationRepo, orders *store.OrderRepo, sync SyncRunner, cfg *config.ServerConfig) *Server {
	s := &Server{
		apps:   apps,
		orders: orders,
		sync:   sync,
		cfg:    cfg,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/applications", func(r chi.Router) {
		r.Post("/", s.handleCreateApplication)
		r.Get("/", s.handleListApplications)
		r.Get("/{id}", s.handleGetApplication)
		r.Put("/{id}", s.handleUpdateApplication)
		r.Delete("/{id}", s.handleDeleteApplication)
	})

	s.router.Route("/orders", func(r chi.Router) {
		r.Post("/", s.handleCreateOrder)
		r.Get("/", s.handleListOrders)
		r.Post("/reconcile", s.handleReconcile)
		r.Get("/{id}", s.handleGetOrder)
		r.Put("/{id}", s.handleUpdateOrder)
		r.Delete("/{id}", s.handleDeleteOrder)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
