// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package navigation

import (
	"fmt"
	"net/url"
	"strings"
)

// CanonicalizePath normalizes a request path: duplicate slashes collapse,
// "." and ".." are resolved, and a trailing slash is dropped except for root.
// The result always starts with "/".
func CanonicalizePath(p string) (string, error) {
	if strings.ContainsAny(p, "\\\x00") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}

	out := make([]string, 0, 8)
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) == 0 {
				return "", fmt.Errorf("%w: %q", ErrPathEscapesRoot, p)
			}
			out = out[:len(out)-1]
		default:
			out = append(out, seg)
		}
	}
	return "/" + strings.Join(out, "/"), nil
}

// decodeSegments splits a canonical path and percent-decodes each segment.
// An encoded slash stays inside its segment.
func decodeSegments(p string) ([]string, error) {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return nil, nil
	}
	raw := strings.Split(trimmed, "/")
	segs := make([]string, len(raw))
	for i, s := range raw {
		d, err := url.PathUnescape(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
		}
		segs[i] = d
	}
	return segs, nil
}

// normalizeBase turns "", "/", "/app/" and "/app" into "/" or "/app".
func normalizeBase(base string) string {
	base = strings.TrimRight(base, "/")
	if base == "" {
		return "/"
	}
	return base
}

// stripBase returns the part of p below base, or false when p is outside it.
func stripBase(base, p string) (string, bool) {
	if base == "/" {
		return p, true
	}
	if p == base {
		return "/", true
	}
	if strings.HasPrefix(p, base+"/") {
		return p[len(base):], true
	}
	return "", false
}
