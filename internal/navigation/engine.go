// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package navigation matches URLs against a routes.Table and serves the
// single-page UI shell for matched routes.
package navigation

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ManuGH/clusterview/internal/routes"
)

// Match is the result of resolving a location.
type Match struct {
	Route  routes.Route
	Params map[string]string
}

// Engine is a validated, read-only view of a route table. It is safe for
// concurrent use.
type Engine struct {
	table routes.Table
	mode  routes.Mode
	base  string
	list  []routes.Route
	root  *node
}

// New validates the table and builds the matching tree. A table with
// duplicate names, overlapping patterns, malformed paths, an unknown mode or
// a malformed base path is rejected with *ValidationErrors.
func New(t routes.Table) (*Engine, error) {
	if err := validate(t); err != nil {
		return nil, err
	}

	e := &Engine{
		table: t,
		mode:  t.Mode(),
		base:  normalizeBase(t.Base()),
		list:  t.Routes(),
		root:  newNode(""),
	}
	for i, r := range e.list {
		e.root.insert(r.Path, i)
	}
	return e, nil
}

// Table returns the table the engine was built from.
func (e *Engine) Table() routes.Table { return e.table }

// Mode returns the navigation mode.
func (e *Engine) Mode() routes.Mode { return e.mode }

// Base returns the normalized base path ("/" or "/prefix").
func (e *Engine) Base() string { return e.base }

// Resolve matches a location (path, optional query and fragment) against the
// table. In history mode the route is taken from the path below the base; in
// hash mode the path must be the base and the route is taken from the fragment.
func (e *Engine) Resolve(location string) (Match, bool) {
	p, fragment := location, ""
	if i := strings.IndexByte(p, '#'); i >= 0 {
		p, fragment = p[:i], p[i+1:]
	}
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}

	var rel string
	switch e.mode {
	case routes.ModeHash:
		cp, err := CanonicalizePath(p)
		if err != nil {
			return Match{}, false
		}
		if sub, ok := stripBase(e.base, cp); !ok || sub != "/" {
			return Match{}, false
		}
		if i := strings.IndexByte(fragment, '?'); i >= 0 {
			fragment = fragment[:i]
		}
		rel = fragment
	default:
		cp, err := CanonicalizePath(p)
		if err != nil {
			return Match{}, false
		}
		sub, ok := stripBase(e.base, cp)
		if !ok {
			return Match{}, false
		}
		rel = sub
	}

	return e.match(rel)
}

// ResolvePath matches a path that is already relative to the base.
func (e *Engine) ResolvePath(rel string) (Match, bool) {
	return e.match(rel)
}

func (e *Engine) match(rel string) (Match, bool) {
	cp, err := CanonicalizePath(rel)
	if err != nil {
		return Match{}, false
	}
	segs, err := decodeSegments(cp)
	if err != nil {
		return Match{}, false
	}
	idx := e.root.match(segs)
	if idx < 0 {
		return Match{}, false
	}
	r := e.list[idx]
	return Match{Route: r, Params: extractParams(r.Path, segs)}, true
}

// Href builds the browser URL for a named route.
func (e *Engine) Href(name string, params map[string]string) (string, error) {
	r, ok := e.table.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}

	parts := splitPattern(r.Path)
	for i, part := range parts {
		switch {
		case strings.HasPrefix(part, ":"):
			v, ok := params[part[1:]]
			if !ok || v == "" {
				return "", fmt.Errorf("%w: %s needs %q", ErrMissingParam, name, part[1:])
			}
			parts[i] = url.PathEscape(v)
		case strings.HasPrefix(part, "*"):
			v := params[part[1:]]
			sub := strings.Split(strings.Trim(v, "/"), "/")
			for j := range sub {
				sub[j] = url.PathEscape(sub[j])
			}
			parts[i] = strings.Join(sub, "/")
		}
	}
	rel := "/" + strings.TrimSuffix(strings.Join(parts, "/"), "/")

	if e.mode == routes.ModeHash {
		if e.base == "/" {
			return "/#" + rel, nil
		}
		return e.base + "/#" + rel, nil
	}
	if e.base == "/" {
		return rel, nil
	}
	if rel == "/" {
		return e.base + "/", nil
	}
	return e.base + rel, nil
}

// ManifestRoute is the client-facing description of a route.
type ManifestRoute struct {
	Name string      `json:"name"`
	Path string      `json:"path"`
	View routes.View `json:"view"`
	Href string      `json:"href,omitempty"`
}

// Manifest is the client-facing description of the route table.
type Manifest struct {
	Mode   routes.Mode     `json:"mode"`
	Base   string          `json:"base"`
	Routes []ManifestRoute `json:"routes"`
}

// Manifest describes the table for the client bundle.
func (e *Engine) Manifest() Manifest {
	m := Manifest{
		Mode:   e.mode,
		Base:   e.base,
		Routes: make([]ManifestRoute, 0, len(e.list)),
	}
	for _, r := range e.list {
		href, _ := e.Href(r.Name, nil)
		m.Routes = append(m.Routes, ManifestRoute{
			Name: r.Name,
			Path: r.Path,
			View: r.View,
			Href: href,
		})
	}
	return m
}
