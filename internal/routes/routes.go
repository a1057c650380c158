// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package routes declares the client-side route table of the web UI.
//
// A Table is plain data: an ordered list of routes, a navigation mode and a
// base path. It is built once at start-up and handed to the navigation engine,
// which owns validation and matching.
package routes

// Mode selects how the browser encodes the current route.
type Mode string

const (
	// ModeHistory uses real URL paths (pushState navigation).
	ModeHistory Mode = "history"
	// ModeHash keeps the route in the URL fragment ("#/ping").
	ModeHash Mode = "hash"
)

// View names an external renderable unit of the SPA bundle. The server never
// looks inside it.
type View string

// Route binds a URL pattern to a view under a unique name.
type Route struct {
	Path string `json:"path"`
	Name string `json:"name"`
	View View   `json:"view"`
}

// Table is the immutable, ordered route table.
type Table struct {
	mode   Mode
	base   string
	routes []Route
}

// New constructs a Table. The input slice is copied; order is preserved and
// determines matching precedence.
func New(mode Mode, base string, routes ...Route) Table {
	cp := make([]Route, len(routes))
	copy(cp, routes)
	return Table{
		mode:   mode,
		base:   base,
		routes: cp,
	}
}

// Mode returns the navigation mode.
func (t Table) Mode() Mode { return t.mode }

// Base returns the base path prefix applied to every route.
func (t Table) Base() string { return t.base }

// Len returns the number of routes.
func (t Table) Len() int { return len(t.routes) }

// Routes returns a copy of the routes in declaration order.
func (t Table) Routes() []Route {
	cp := make([]Route, len(t.routes))
	copy(cp, t.routes)
	return cp
}

// Lookup returns the first route with the given name.
func (t Table) Lookup(name string) (Route, bool) {
	for _, r := range t.routes {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}
