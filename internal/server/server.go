// Package server implements the flowscope HTTP API.
//
// The API holds uploaded graph documents in memory and lets clients drive
// collapse/expand state remotely. Each document gets a uuid; state mutations
// are serialized per document.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/flowscope/pkg/config"
	"github.com/matzehuels/flowscope/pkg/observability"
)

// Server is the flowscope HTTP API server.
type Server struct {
	addr   string
	cfg    config.Config
	logger *log.Logger
	store  *Store
	srv    *http.Server
}

// New creates a server listening on addr.
func New(addr string, cfg config.Config, logger *log.Logger) *Server {
	s := &Server{
		addr:   addr,
		cfg:    cfg,
		logger: logger,
		store:  NewStore(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/documents", func(r chi.Router) {
		r.Post("/", s.handleUpload)
		r.Get("/", s.handleList)

		r.Route("/{docID}", func(r chi.Router) {
			r.Get("/", s.handleSnapshot)
			r.Delete("/", s.handleDelete)
			r.Get("/visible", s.handleVisible)
			r.Get("/render", s.handleRender)
			r.Post("/collapse/{containerID}", s.handleCollapse)
			r.Post("/expand/{containerID}", s.handleExpand)
			r.Post("/collapse-all", s.handleCollapseAll)
			r.Post("/expand-all", s.handleExpandAll)
		})
	})

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start runs the server until ListenAndServe returns.
func (s *Server) Start() error {
	s.logger.Infof("Listening on %s", s.addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down")
	return s.srv.Shutdown(ctx)
}

// ServeHTTP implements http.Handler for tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.srv.Handler.ServeHTTP(w, r)
}

// observe reports requests to the logger and observability hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.Server().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		observability.Server().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), elapsed)
		s.logger.Debugf("%s %s %d (%s)", r.Method, r.URL.Path, ww.Status(), elapsed.Round(time.Millisecond))
	})
}
