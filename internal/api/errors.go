// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/clusterview/internal/api/problem"
	"github.com/ManuGH/clusterview/internal/haproxy"
	"github.com/ManuGH/clusterview/internal/log"
	"github.com/ManuGH/clusterview/internal/resilience"
	"github.com/ManuGH/clusterview/internal/telemetry"
	"github.com/ManuGH/clusterview/internal/upstream"
)

// retryAfterOpen is advertised while a breaker is open.
const retryAfterOpen = "30"

type errorClass struct {
	status      int
	problemType string
	title       string
}

// classify maps domain errors onto HTTP semantics. An open breaker or a missing
// upstream is a temporary server-side condition (503); any other upstream
// failure is a bad gateway (502).
func classify(err error) errorClass {
	switch {
	case errors.Is(err, upstream.ErrNotConfigured):
		return errorClass{http.StatusServiceUnavailable, "upstream/not_configured", "Service Unavailable"}
	case errors.Is(err, resilience.ErrCircuitOpen):
		return errorClass{http.StatusServiceUnavailable, "upstream/circuit_open", "Service Unavailable"}
	case errors.Is(err, context.Canceled):
		return errorClass{http.StatusServiceUnavailable, "request/canceled", "Service Unavailable"}
	case errors.Is(err, haproxy.ErrAllHostsFailed),
		errors.Is(err, haproxy.ErrMissingHeader),
		isUpstream(err):
		return errorClass{http.StatusBadGateway, "upstream/error", "Bad Gateway"}
	case errors.Is(err, context.DeadlineExceeded):
		return errorClass{http.StatusServiceUnavailable, "request/timeout", "Service Unavailable"}
	default:
		return errorClass{http.StatusInternalServerError, "system/internal", "Internal Server Error"}
	}
}

func isUpstream(err error) bool {
	var ue *upstream.Error
	return errors.As(err, &ue)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	c := classify(err)

	logger := log.WithComponentFromContext(r.Context(), "api")
	ev := logger.Warn()
	if c.status == http.StatusInternalServerError {
		ev = logger.Error()
	}
	ev.Err(err).
		Str("event", "api.request.failed").
		Str(log.FieldPath, r.URL.Path).
		Int(log.FieldStatus, c.status).
		Str("problem_type", c.problemType).
		Msg("request failed")
	trace.SpanFromContext(r.Context()).SetAttributes(telemetry.ErrorAttributes(err, c.problemType)...)

	if c.problemType == "upstream/circuit_open" {
		w.Header().Set("Retry-After", retryAfterOpen)
	}
	problem.Write(w, r, c.status, c.problemType, c.title, err.Error())
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Str("event", "api.encode_failed").Msg("failed to encode response")
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	problem.Write(w, r, http.StatusNotFound, "request/not_found", "Not Found", "no such endpoint")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem.Write(w, r, http.StatusMethodNotAllowed, "request/method_not_allowed", "Method Not Allowed", r.Method+" is not supported")
}
