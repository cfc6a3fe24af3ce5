// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the local operator control surface over HTTP/JSON.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ManuGH/seacam/internal/api/middleware"
	"github.com/ManuGH/seacam/internal/audit"
	"github.com/ManuGH/seacam/internal/health"
	"github.com/ManuGH/seacam/internal/interval"
	"github.com/ManuGH/seacam/internal/log"
	"github.com/ManuGH/seacam/internal/notify"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Controller is the scheduler surface the API drives.
type Controller interface {
	Status() interval.Status
	Settings() interval.Settings
	UpdateSettings(ctx context.Context, fn func(*interval.Settings)) (interval.Settings, error)
	StartCampaign(ctx context.Context) error
	StopCampaign() bool
}

// Deps are the collaborators of a Server.
type Deps struct {
	Controller Controller
	Health     *health.Manager
	// Notifications is optional; without it the notifications route is not mounted.
	Notifications *notify.Recorder
	// RateLimit is mutating requests per minute per client IP.
	RateLimit int
	// Audit records operator actions; defaults to the "audit" component logger.
	Audit *audit.Logger
}

// Server routes control API requests.
type Server struct {
	ctrl   Controller
	health *health.Manager
	notes  *notify.Recorder
	audit  *audit.Logger
	logger zerolog.Logger
	router chi.Router
}

// New creates a Server and mounts its routes.
func New(deps Deps) *Server {
	s := &Server{
		ctrl:   deps.Controller,
		health: deps.Health,
		notes:  deps.Notifications,
		audit:  deps.Audit,
		logger: log.WithComponent("api"),
	}
	if s.audit == nil {
		s.audit = audit.NewLogger()
	}
	if s.health == nil {
		s.health = health.NewManager("")
	}
	s.router = s.routes(deps.RateLimit)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes(rateLimit int) chi.Router {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		EnableLogging:         true,
	})

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/intervals", s.handleStatus)
		r.Get("/intervals/settings", s.handleGetSettings)
		if s.notes != nil {
			r.Get("/notifications", s.handleNotifications)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.ControlRateLimit(rateLimit))
			r.Post("/intervals/start", s.handleStart)
			r.Post("/intervals/stop", s.handleStop)
			r.Patch("/intervals/settings", s.handlePatchSettings)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed on this route")
	})
	return r
}

// NewHTTPServer wraps handler with the timeouts the daemon listens with.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
}
