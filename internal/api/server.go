package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	temporalclient "go.temporal.io/sdk/client"

	"github.com/netobs/dc-catalog/internal/api/handler"
	mw "github.com/netobs/dc-catalog/internal/api/middleware"
	"github.com/netobs/dc-catalog/internal/catalog"
	"github.com/netobs/dc-catalog/internal/config"
	"github.com/netobs/dc-catalog/internal/core"
	"github.com/netobs/dc-catalog/internal/infrahub"
)

type Server struct {
	router         chi.Router
	logger         zerolog.Logger
	services       *core.Services
	pool           *pgxpool.Pool
	temporalClient temporalclient.Client
	cfg            *config.Config
}

func NewServer(logger zerolog.Logger, pool *pgxpool.Pool, temporalClient temporalclient.Client, backend *infrahub.Client, defaults catalog.Defaults, cfg *config.Config) *Server {
	services := core.NewServices(pool, temporalClient, backend, defaults, core.RunConfig{
		DefaultBranch: cfg.InfrahubDefaultBranch,
		PollInterval:  cfg.PollInterval,
		PollDeadline:  cfg.PollDeadline,
	})

	s := &Server{
		router:         chi.NewRouter(),
		logger:         logger,
		services:       services,
		pool:           pool,
		temporalClient: temporalClient,
		cfg:            cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		if !s.cfg.AuthDisabled {
			r.Use(mw.Auth(s.pool))
		}

		// Data center submission
		dc := handler.NewDataCenter(s.services.Run)
		r.With(mw.RequireScope("datacenters", "write")).Post("/datacenters", dc.Create)

		// Provisioning runs
		run := handler.NewRun(s.services.Run)
		runRead := mw.RequireScope("runs", "read")
		runWrite := mw.RequireScope("runs", "write")
		r.With(runRead).Get("/runs", run.List)
		r.With(runRead).Get("/runs/{id}", run.Get)
		r.With(runWrite).Post("/runs/{id}/resume", run.Resume)
		r.With(runWrite).Post("/runs/{id}/cancel", run.Cancel)

		// Catalog read models
		catalogHandler := handler.NewCatalog(s.services.Catalog)
		catalogRead := mw.RequireScope("catalog", "read")
		r.With(catalogRead).Get("/catalog/options", catalogHandler.Options)
		r.With(catalogRead).Get("/catalog/datacenters", catalogHandler.DataCenters)
		r.With(catalogRead).Get("/catalog/proposed-changes", catalogHandler.ProposedChanges)

		// API keys
		apiKey := handler.NewAPIKey(s.services.APIKey)
		keyRead := mw.RequireScope("api_keys", "read")
		keyWrite := mw.RequireScope("api_keys", "write")
		r.With(keyRead).Get("/api-keys", apiKey.List)
		r.With(keyWrite).Post("/api-keys", apiKey.Create)
		r.With(keyRead).Get("/api-keys/{id}", apiKey.Get)
		r.With(keyWrite).Delete("/api-keys/{id}", apiKey.Revoke)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.pool.Ping(ctx); err != nil {
		checks["catalog_db"] = err.Error()
		healthy = false
	} else {
		checks["catalog_db"] = "ok"
	}

	if _, err := s.temporalClient.CheckHealth(ctx, &temporalclient.CheckHealthRequest{}); err != nil {
		checks["temporal"] = err.Error()
		healthy = false
	} else {
		checks["temporal"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
