// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the JSON API, the health probes and the UI shell.
package api

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/clusterview/internal/api/middleware"
	"github.com/ManuGH/clusterview/internal/haproxy"
	"github.com/ManuGH/clusterview/internal/health"
	"github.com/ManuGH/clusterview/internal/lxd"
	"github.com/ManuGH/clusterview/internal/navigation"
)

// InventorySource yields the container inventory grouped by cluster member.
type InventorySource interface {
	Inventory(ctx context.Context) (lxd.Inventory, error)
}

// StatsSource yields a merged HAProxy stats snapshot.
type StatsSource interface {
	Collect(ctx context.Context) (*haproxy.Snapshot, error)
}

// Upstreams are the data sources behind the views. A nil source answers 503.
type Upstreams struct {
	Containers InventorySource
	Services   StatsSource
}

// Config configures the HTTP surface.
type Config struct {
	APIPrefix string
	UI        navigation.UIConfig
	Stack     middleware.StackConfig

	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler
}

// Server owns the router. Upstreams can be swapped at runtime; the route
// table and the navigation engine are fixed for the life of the server.
type Server struct {
	cfg       Config
	engine    *navigation.Engine
	health    *health.Manager
	upstreams atomic.Pointer[Upstreams]
	handler   http.Handler
}

// New builds the server and its routes.
func New(cfg Config, engine *navigation.Engine, hm *health.Manager, up Upstreams) *Server {
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api"
	}
	cfg.UI.APIPrefix = cfg.APIPrefix

	s := &Server{cfg: cfg, engine: engine, health: hm}
	s.upstreams.Store(&up)
	s.handler = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// SetUpstreams atomically replaces the data sources, e.g. after a config reload.
func (s *Server) SetUpstreams(up Upstreams) { s.upstreams.Store(&up) }

func (s *Server) current() Upstreams { return *s.upstreams.Load() }

func (s *Server) routes() http.Handler {
	r := middleware.NewRouter(s.cfg.Stack)

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	if s.cfg.Metrics != nil {
		r.Handle("/metrics", s.cfg.Metrics)
	}

	r.Route(s.cfg.APIPrefix, func(r chi.Router) {
		r.Get("/routes", s.handleRoutes)
		r.Get("/containers", s.handleContainers)
		r.Get("/services", s.handleServices)
		r.Get("/ping", s.handlePing)
		r.NotFound(notFound)
		r.MethodNotAllowed(methodNotAllowed)
	})

	ui := s.engine.Handler(s.cfg.UI)
	if base := s.engine.Base(); base == "/" {
		r.Handle("/*", ui)
	} else {
		r.Handle(base, ui)
		r.Handle(base+"/*", ui)
		r.NotFound(notFound)
	}
	return r
}
