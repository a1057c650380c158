// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package problem

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/clusterview/internal/log"
)

func TestWrite(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/services", nil)
	req = req.WithContext(log.ContextWithRequestID(req.Context(), "req-1"))
	rec := httptest.NewRecorder()

	Write(rec, req, http.StatusBadGateway, "upstream/error", "Bad Gateway", "haproxy: all stats servers failed")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var got Details
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, Details{
		Type:      "upstream/error",
		Title:     "Bad Gateway",
		Status:    http.StatusBadGateway,
		Detail:    "haproxy: all stats servers failed",
		Instance:  "/api/services",
		RequestID: "req-1",
	}, got)
}

func TestWriteFallsBackToResponseHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.Header().Set(HeaderRequestID, "hdr-1")

	Write(rec, nil, http.StatusInternalServerError, "system/internal", "Internal Server Error", "")

	var got Details
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "hdr-1", got.RequestID)
	assert.Empty(t, got.Instance)
}
