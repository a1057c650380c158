// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package problem writes RFC 7807 problem details responses.
package problem

import (
	"encoding/json"
	"net/http"

	"github.com/ManuGH/clusterview/internal/log"
)

// HeaderRequestID carries the request correlation id on requests and responses.
const HeaderRequestID = "X-Request-ID"

// Details is the problem+json body.
type Details struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Instance  string `json:"instance,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Write writes an RFC 7807 problem details response.
//
// problemType is a stable machine identifier such as "upstream/unavailable";
// title is the short human label and detail explains this occurrence.
func Write(w http.ResponseWriter, r *http.Request, status int, problemType, title, detail string) {
	body := Details{
		Type:   problemType,
		Title:  title,
		Status: status,
		Detail: detail,
	}
	if r != nil {
		body.Instance = r.URL.EscapedPath()
		body.RequestID = log.RequestIDFromContext(r.Context())
	}
	if body.RequestID == "" {
		body.RequestID = w.Header().Get(HeaderRequestID)
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger := log.WithComponent("api")
		logger.Error().
			Err(err).
			Str("type", problemType).
			Int("status", status).
			Msg("failed to encode problem response")
	}
}
