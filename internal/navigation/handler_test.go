// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package navigation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/clusterview/internal/routes"
)

const testCSP = "default-src 'self'"

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestUIHandler_ShellForRoutes(t *testing.T) {
	h := mustEngine(t, routes.Default("/dash")).Handler(UIConfig{CSP: testCSP, APIPrefix: "/api"})

	for target, view := range map[string]string{
		"/dash":            "Containers",
		"/dash/":           "Containers",
		"/dash/index.html": "Containers",
		"/dash/ping":       "Ping",
	} {
		w := serve(h, http.MethodGet, target)
		require.Equal(t, http.StatusOK, w.Code, target)
		assert.Contains(t, w.Header().Get("Cache-Control"), "no-cache", target)
		assert.Equal(t, testCSP, w.Header().Get("Content-Security-Policy"), target)
		assert.Contains(t, w.Body.String(), `data-view="`+view+`"`, target)
		assert.Contains(t, w.Body.String(), `<base href="/dash/">`, target)
		assert.Contains(t, w.Body.String(), `data-api="/api"`, target)
	}
}

func TestUIHandler_ShellEmbedsManifest(t *testing.T) {
	h := mustEngine(t, routes.Default("")).Handler(UIConfig{})

	w := serve(h, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"mode":"history"`)
	assert.Contains(t, body, `"name":"Ping","path":"/ping","view":"Ping","href":"/ping"`)
	assert.Contains(t, body, "<title>clusterview</title>")
}

func TestUIHandler_UnknownPathRendersShellWith404(t *testing.T) {
	h := mustEngine(t, routes.Default("")).Handler(UIConfig{CSP: testCSP})

	w := serve(h, http.MethodGet, "/does/not/exist")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `id="route-manifest"`)
	assert.Equal(t, testCSP, w.Header().Get("Content-Security-Policy"))
}

func TestUIHandler_OutsideBase(t *testing.T) {
	h := mustEngine(t, routes.Default("/dash")).Handler(UIConfig{})

	w := serve(h, http.MethodGet, "/ping")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "route-manifest")
}

func TestUIHandler_AssetsCached(t *testing.T) {
	h := mustEngine(t, routes.Default("/dash")).Handler(UIConfig{CSP: testCSP})

	w := serve(h, http.MethodGet, "/dash/assets/app.js")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=31536000, immutable", w.Header().Get("Cache-Control"))
	assert.Equal(t, testCSP, w.Header().Get("Content-Security-Policy"))
	assert.Contains(t, w.Body.String(), "route-manifest")

	w = serve(h, http.MethodGet, "/dash/assets/missing.js")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Header().Get("Cache-Control"))
}

func TestUIHandler_HashMode(t *testing.T) {
	table := routes.New(routes.ModeHash, "/",
		routes.Route{Path: "/", Name: "Containers", View: routes.ViewContainers},
		routes.Route{Path: "/ping", Name: "Ping", View: routes.ViewPing},
	)
	h := mustEngine(t, table).Handler(UIConfig{})

	w := serve(h, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"href":"/#/ping"`)

	w = serve(h, http.MethodGet, "/ping")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUIHandler_Methods(t *testing.T) {
	h := mustEngine(t, routes.Default("")).Handler(UIConfig{})

	w := serve(h, http.MethodHead, "/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, w.Body.Len())

	w = serve(h, http.MethodPost, "/ping")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "GET, HEAD", w.Header().Get("Allow"))
}

func TestUIHandler_ShellFileNotServedRaw(t *testing.T) {
	h := mustEngine(t, routes.Default("")).Handler(UIConfig{})

	w := serve(h, http.MethodGet, "/index.html")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, strings.Contains(w.Body.String(), "{{"), "template must be rendered")
}
