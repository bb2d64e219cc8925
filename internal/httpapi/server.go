// Package httpapi exposes the admin console over HTTP.
package httpapi

import (
	"context"
	"net/http"

	"recytoken-up-go/internal/api"
	"recytoken-up-go/internal/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	srv *http.Server
}

func New(cfg models.HTTPConfig, console *api.Console) *Server {
	return &Server{srv: &http.Server{
		Addr:         cfg.Addr,
		Handler:      NewRouter(console, cfg.ExposeMetrics),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}}
}

// NewRouter registers every console route
func NewRouter(console *api.Console, exposeMetrics bool) *mux.Router {
	router := mux.NewRouter()
	router.Use(instrument)

	h := NewHandler(console)
	h.RegisterRoutes(router)

	if exposeMetrics {
		router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
	return router
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
