// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package navigation

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/clusterview/internal/log"
	"github.com/ManuGH/clusterview/internal/metrics"
	"github.com/ManuGH/clusterview/internal/routes"
	"github.com/ManuGH/clusterview/internal/telemetry"
)

//go:embed all:dist
var uiFS embed.FS

const shellFile = "index.html"

// UIConfig configures the UI handler
type UIConfig struct {
	CSP       string
	Title     string
	APIPrefix string
}

type shellData struct {
	Title        string
	AssetBase    string
	APIPrefix    string
	View         routes.View
	ManifestJSON template.JS
}

type uiHandler struct {
	engine *Engine
	cfg    UIConfig
	assets fs.FS
	shell  *template.Template
	// manifest is rendered once; the table never changes after construction.
	manifest template.JS
}

// Handler serves the embedded single-page UI below the engine's base path.
// Requests must carry the full path including the base.
func (e *Engine) Handler(cfg UIConfig) http.Handler {
	if cfg.Title == "" {
		cfg.Title = "clusterview"
	}
	h := &uiHandler{engine: e, cfg: cfg}

	sub, err := fs.Sub(uiFS, "dist")
	if err == nil {
		h.assets = sub
		h.shell, err = template.ParseFS(sub, shellFile)
	}
	if err != nil {
		logger := log.WithComponent("ui")
		logger.Error().Err(err).Str("event", "ui.shell.unavailable").Msg("embedded UI not available")
	}

	raw, err := json.Marshal(e.Manifest())
	if err == nil {
		h.manifest = template.JS(raw)
	}
	metrics.SetRouteTableSize(len(e.list))
	return h
}

func (h *uiHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Security-Policy", h.cfg.CSP)

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	cp, err := CanonicalizePath(r.URL.Path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	rel, ok := stripBase(h.engine.base, cp)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if rel == "/"+shellFile {
		rel = "/"
	}

	if strings.Contains(path.Base(rel), ".") {
		h.serveAsset(w, r, rel)
		return
	}

	if h.engine.mode == routes.ModeHash {
		// The route lives in the fragment, which browsers never send.
		if rel != "/" {
			http.NotFound(w, r)
			return
		}
		metrics.RecordRouteResolution("", true)
		h.serveShell(w, r, "", http.StatusOK)
		return
	}

	m, ok := h.engine.ResolvePath(rel)
	metrics.RecordRouteResolution(m.Route.Name, ok)
	trace.SpanFromContext(r.Context()).SetAttributes(telemetry.NavigationAttributes(m.Route.Name, ok)...)
	if !ok {
		h.serveShell(w, r, "", http.StatusNotFound)
		return
	}
	h.serveShell(w, r, m.Route.View, http.StatusOK)
}

func (h *uiHandler) serveAsset(w http.ResponseWriter, r *http.Request, rel string) {
	name := strings.TrimPrefix(rel, "/")
	if h.assets == nil || name == shellFile {
		http.NotFound(w, r)
		return
	}
	if _, err := fs.Stat(h.assets, name); err != nil {
		http.NotFound(w, r)
		return
	}
	// Hashed assets can be cached forever
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeFileFS(w, r, h.assets, name)
}

func (h *uiHandler) serveShell(w http.ResponseWriter, r *http.Request, view routes.View, status int) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	if h.shell == nil {
		http.Error(w, "UI not available", http.StatusInternalServerError)
		return
	}

	assetBase := h.engine.base
	if assetBase != "/" {
		assetBase += "/"
	}

	var buf bytes.Buffer
	err := h.shell.Execute(&buf, shellData{
		Title:        h.cfg.Title,
		AssetBase:    assetBase,
		APIPrefix:    h.cfg.APIPrefix,
		View:         view,
		ManifestJSON: h.manifest,
	})
	if err != nil {
		logger := log.WithComponent("ui")
		logger.Error().Err(err).Str("event", "ui.shell.render_failed").Msg("failed to render UI shell")
		http.Error(w, "UI not available", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(buf.Bytes())
}
