// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package navigation

import (
	"fmt"
	"strings"

	"github.com/ManuGH/clusterview/internal/routes"
)

// validate checks a table and returns every problem found, or nil.
func validate(t routes.Table) error {
	var errs []ValidationError

	switch t.Mode() {
	case routes.ModeHistory, routes.ModeHash:
	default:
		errs = append(errs, ValidationError{
			Type:    ErrorInvalidMode,
			Message: fmt.Sprintf("mode %q must be %q or %q", t.Mode(), routes.ModeHistory, routes.ModeHash),
		})
	}

	if base := t.Base(); base != "" {
		if !strings.HasPrefix(base, "/") || strings.ContainsAny(base, "?#") {
			errs = append(errs, ValidationError{
				Type:    ErrorInvalidBase,
				Message: fmt.Sprintf("base path %q must start with / and contain no query or fragment", base),
			})
		}
	}

	byName := make(map[string][]string)
	byShape := make(map[string][]string)
	var nameOrder, shapeOrder []string

	for _, r := range t.Routes() {
		if msg := checkPattern(r.Path); msg != "" {
			errs = append(errs, ValidationError{
				Type:    ErrorInvalidPath,
				Message: fmt.Sprintf("path %q: %s", r.Path, msg),
				Routes:  []string{r.Name},
			})
			continue
		}
		if r.Name == "" {
			errs = append(errs, ValidationError{
				Type:    ErrorInvalidName,
				Message: fmt.Sprintf("route at %q has an empty name", r.Path),
			})
			continue
		}
		if strings.TrimSpace(string(r.View)) == "" {
			errs = append(errs, ValidationError{
				Type:    ErrorInvalidView,
				Message: fmt.Sprintf("route at %q has no view", r.Path),
				Routes:  []string{r.Name},
			})
		}

		if _, ok := byName[r.Name]; !ok {
			nameOrder = append(nameOrder, r.Name)
		}
		byName[r.Name] = append(byName[r.Name], r.Path)

		s := shape(r.Path)
		if _, ok := byShape[s]; !ok {
			shapeOrder = append(shapeOrder, s)
		}
		byShape[s] = append(byShape[s], r.Name)
	}

	for _, name := range nameOrder {
		if paths := byName[name]; len(paths) > 1 {
			errs = append(errs, ValidationError{
				Type:    ErrorDuplicateName,
				Message: fmt.Sprintf("name %q is used by %d routes (%s)", name, len(paths), strings.Join(paths, ", ")),
				Routes:  []string{name},
			})
		}
	}
	for _, s := range shapeOrder {
		if names := byShape[s]; len(names) > 1 {
			errs = append(errs, ValidationError{
				Type:    ErrorDuplicatePath,
				Message: fmt.Sprintf("pattern %s is declared more than once", s),
				Routes:  names,
			})
		}
	}

	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}

// checkPattern returns a description of what is wrong with a route pattern,
// or "" when it is valid.
func checkPattern(p string) string {
	if p == "" {
		return "empty"
	}
	if !strings.HasPrefix(p, "/") {
		return "must start with /"
	}
	if strings.ContainsAny(p, "?#\\") {
		return "must not contain ?, # or \\"
	}
	segs := splitPattern(p)
	for i, seg := range segs {
		switch {
		case seg == "":
			return "empty segment"
		case seg == "." || seg == "..":
			return "dot segments are not allowed"
		case strings.HasPrefix(seg, ":"):
			if len(seg) == 1 {
				return "parameter without a name"
			}
		case strings.HasPrefix(seg, "*"):
			if len(seg) == 1 {
				return "catch-all without a name"
			}
			if i != len(segs)-1 {
				return "catch-all must be the last segment"
			}
		}
	}
	return ""
}
