// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ManuGH/clusterview/internal/api/problem"
	"github.com/ManuGH/clusterview/internal/haproxy"
	"github.com/ManuGH/clusterview/internal/upstream"
)

// aggregatedServices is the ?aggregate=true view: one merged entry per proxy name.
type aggregatedServices struct {
	haproxy.Aggregated
	Errors []haproxy.HostError `json:"errors"`
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.engine.Manifest())
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleContainers(w http.ResponseWriter, r *http.Request) {
	src := s.current().Containers
	if src == nil {
		writeError(w, r, fmt.Errorf("lxd: %w", upstream.ErrNotConfigured))
		return
	}

	inv, err := src.Inventory(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, inv)
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	aggregate := false
	if raw := r.URL.Query().Get("aggregate"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			problem.Write(w, r, http.StatusBadRequest, "request/invalid_parameter", "Bad Request",
				fmt.Sprintf("aggregate must be a boolean, got %q", raw))
			return
		}
		aggregate = v
	}

	src := s.current().Services
	if src == nil {
		writeError(w, r, fmt.Errorf("haproxy: %w", upstream.ErrNotConfigured))
		return
	}

	snap, err := src.Collect(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	if aggregate {
		writeJSON(w, r, http.StatusOK, aggregatedServices{
			Aggregated: haproxy.AggregateGroups(snap.Groups),
			Errors:     snap.Errors,
		})
		return
	}
	writeJSON(w, r, http.StatusOK, snap)
}
