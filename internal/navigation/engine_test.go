// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package navigation

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/clusterview/internal/routes"
)

func mustEngine(t *testing.T, table routes.Table) *Engine {
	t.Helper()
	e, err := New(table)
	require.NoError(t, err)
	return e
}

func TestDefaultTableResolves(t *testing.T) {
	e := mustEngine(t, routes.Default(""))

	m, ok := e.Resolve("/")
	require.True(t, ok)
	assert.Equal(t, "Containers", m.Route.Name)
	assert.Equal(t, routes.ViewContainers, m.Route.View)

	m, ok = e.Resolve("/ping")
	require.True(t, ok)
	assert.Equal(t, "Ping", m.Route.Name)
	assert.Equal(t, routes.ViewPing, m.Route.View)

	_, ok = e.Resolve("/nope")
	assert.False(t, ok)
}

func TestResolveCanonicalizes(t *testing.T) {
	e := mustEngine(t, routes.Default("/dash"))

	cases := map[string]string{
		"/dash":              "Containers",
		"/dash/":             "Containers",
		"/dash/ping":         "Ping",
		"/dash/ping/":        "Ping",
		"/dash//ping":        "Ping",
		"/dash/./ping":       "Ping",
		"/dash/x/../ping":    "Ping",
		"/dash/ping?x=1":     "Ping",
		"/dash/ping#section": "Ping",
	}
	for loc, want := range cases {
		m, ok := e.Resolve(loc)
		if assert.True(t, ok, loc) {
			assert.Equal(t, want, m.Route.Name, loc)
		}
	}

	for _, loc := range []string{"/ping", "/dashboard/ping", "/dash/../../ping", "/dash/a\\b"} {
		_, ok := e.Resolve(loc)
		assert.False(t, ok, loc)
	}
}

func TestHashMode(t *testing.T) {
	table := routes.New(routes.ModeHash, "/ui",
		routes.Route{Path: "/", Name: "Containers", View: routes.ViewContainers},
		routes.Route{Path: "/ping", Name: "Ping", View: routes.ViewPing},
	)
	e := mustEngine(t, table)

	m, ok := e.Resolve("/ui/#/ping")
	require.True(t, ok)
	assert.Equal(t, "Ping", m.Route.Name)

	m, ok = e.Resolve("/ui/#/ping?tab=workers")
	require.True(t, ok)
	assert.Equal(t, "Ping", m.Route.Name)

	m, ok = e.Resolve("/ui")
	require.True(t, ok)
	assert.Equal(t, "Containers", m.Route.Name)

	_, ok = e.Resolve("/ui/ping")
	assert.False(t, ok, "hash mode ignores the path below the base")

	href, err := e.Href("Ping", nil)
	require.NoError(t, err)
	assert.Equal(t, "/ui/#/ping", href)
}

func TestMatchPrecedenceAndParams(t *testing.T) {
	table := routes.New(routes.ModeHistory, "/",
		routes.Route{Path: "/hosts/new", Name: "NewHost", View: "HostForm"},
		routes.Route{Path: "/hosts/:id", Name: "Host", View: "Host"},
		routes.Route{Path: "/hosts/:id/logs", Name: "HostLogs", View: "Logs"},
		routes.Route{Path: "/files/*rest", Name: "Files", View: "Files"},
	)
	e := mustEngine(t, table)

	m, ok := e.Resolve("/hosts/new")
	require.True(t, ok)
	assert.Equal(t, "NewHost", m.Route.Name)
	assert.Empty(t, m.Params)

	m, ok = e.Resolve("/hosts/web%201")
	require.True(t, ok)
	assert.Equal(t, "Host", m.Route.Name)
	assert.Equal(t, map[string]string{"id": "web 1"}, m.Params)

	m, ok = e.Resolve("/hosts/new/logs")
	require.True(t, ok, "static miss must backtrack to the param branch")
	assert.Equal(t, "HostLogs", m.Route.Name)
	assert.Equal(t, map[string]string{"id": "new"}, m.Params)

	m, ok = e.Resolve("/files/a/b/c.txt")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"rest": "a/b/c.txt"}, m.Params)

	m, ok = e.Resolve("/files")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"rest": ""}, m.Params)
}

func TestHref(t *testing.T) {
	table := routes.New(routes.ModeHistory, "/dash/",
		routes.Route{Path: "/", Name: "Containers", View: routes.ViewContainers},
		routes.Route{Path: "/hosts/:id", Name: "Host", View: "Host"},
	)
	e := mustEngine(t, table)

	href, err := e.Href("Containers", nil)
	require.NoError(t, err)
	assert.Equal(t, "/dash/", href)

	href, err = e.Href("Host", map[string]string{"id": "a b"})
	require.NoError(t, err)
	assert.Equal(t, "/dash/hosts/a%20b", href)

	_, err = e.Href("Host", nil)
	assert.ErrorIs(t, err, ErrMissingParam)

	_, err = e.Href("Nope", nil)
	assert.ErrorIs(t, err, ErrUnknownRoute)
}

func TestManifest(t *testing.T) {
	e := mustEngine(t, routes.Default(""))

	want := Manifest{
		Mode: routes.ModeHistory,
		Base: "/",
		Routes: []ManifestRoute{
			{Name: "Containers", Path: "/", View: routes.ViewContainers, Href: "/"},
			{Name: "Ping", Path: "/ping", View: routes.ViewPing, Href: "/ping"},
		},
	}
	if diff := cmp.Diff(want, e.Manifest()); diff != "" {
		t.Errorf("Manifest() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name  string
		table routes.Table
		want  ValidationErrorType
	}{
		{
			name: "duplicate name",
			table: routes.New(routes.ModeHistory, "/",
				routes.Route{Path: "/", Name: "Containers", View: routes.ViewContainers},
				routes.Route{Path: "/ping", Name: "Containers", View: routes.ViewPing},
			),
			want: ErrorDuplicateName,
		},
		{
			name: "duplicate path",
			table: routes.New(routes.ModeHistory, "/",
				routes.Route{Path: "/hosts/:id", Name: "A", View: "A"},
				routes.Route{Path: "/hosts/:name", Name: "B", View: "B"},
			),
			want: ErrorDuplicatePath,
		},
		{
			name:  "relative path",
			table: routes.New(routes.ModeHistory, "/", routes.Route{Path: "ping", Name: "Ping", View: routes.ViewPing}),
			want:  ErrorInvalidPath,
		},
		{
			name:  "catch-all not last",
			table: routes.New(routes.ModeHistory, "/", routes.Route{Path: "/*rest/x", Name: "X", View: "X"}),
			want:  ErrorInvalidPath,
		},
		{
			name:  "unnamed param",
			table: routes.New(routes.ModeHistory, "/", routes.Route{Path: "/hosts/:", Name: "X", View: "X"}),
			want:  ErrorInvalidPath,
		},
		{
			name:  "unknown mode",
			table: routes.New(routes.Mode("memory"), "/", routes.Route{Path: "/", Name: "Containers", View: routes.ViewContainers}),
			want:  ErrorInvalidMode,
		},
		{
			name:  "base with fragment",
			table: routes.New(routes.ModeHistory, "/ui#x", routes.Route{Path: "/", Name: "Containers", View: routes.ViewContainers}),
			want:  ErrorInvalidBase,
		},
		{
			name:  "empty name",
			table: routes.New(routes.ModeHistory, "/", routes.Route{Path: "/", View: routes.ViewContainers}),
			want:  ErrorInvalidName,
		},
		{
			name:  "empty view",
			table: routes.New(routes.ModeHistory, "/", routes.Route{Path: "/", Name: "Containers", View: ""}),
			want:  ErrorInvalidView,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(tt.table)
			require.Error(t, err)
			assert.Nil(t, e)

			var verrs *ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.True(t, verrs.Has(tt.want), "got %v", err)
		})
	}
}

func TestDuplicateNameListsRoute(t *testing.T) {
	table := routes.New(routes.ModeHistory, "/",
		routes.Route{Path: "/", Name: "Ping", View: routes.ViewContainers},
		routes.Route{Path: "/ping", Name: "Ping", View: routes.ViewPing},
	)
	_, err := New(table)

	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs.Errors, 1)
	assert.Equal(t, []string{"Ping"}, verrs.Errors[0].Routes)
	assert.Contains(t, err.Error(), "DUPLICATE_NAME")
}

func TestCanonicalizePath(t *testing.T) {
	cases := map[string]string{
		"":          "/",
		"/":         "/",
		"//a//b/":   "/a/b",
		"/a/./b/..": "/a",
		"a/b":       "/a/b",
	}
	for in, want := range cases {
		got, err := CanonicalizePath(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := CanonicalizePath("/../etc")
	assert.ErrorIs(t, err, ErrPathEscapesRoot)
	_, err = CanonicalizePath("/a\x00")
	assert.ErrorIs(t, err, ErrInvalidPath)
}
