// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package net validates and labels the upstream endpoints clusterview talks
// to (LXD API, HAProxy stats pages).
package net

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

var (
	// ErrInvalidUpstreamURL indicates a configured upstream URL is unusable.
	ErrInvalidUpstreamURL = errors.New("invalid upstream url")
)

// SanitizeURL removes user info and query parameters for safe logging.
func SanitizeURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url-redacted"
	}
	parsedURL.User = nil
	parsedURL.RawQuery = ""
	return parsedURL.String()
}

// ParseUpstreamURL validates an upstream base URL. It enforces:
//   - Scheme must be one of schemes (default "http", "https")
//   - Host must be non-empty
//   - No embedded User/Password credentials, query or fragment
//
// The returned URL has no trailing slash on its path.
func ParseUpstreamURL(s string, schemes ...string) (*url.URL, error) {
	if len(schemes) == 0 {
		schemes = []string{"http", "https"}
	}
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpstreamURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	allowed := false
	for _, want := range schemes {
		if scheme == want {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: scheme %q not in %v", ErrInvalidUpstreamURL, u.Scheme, schemes)
	}
	u.Scheme = scheme

	if u.Host == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidUpstreamURL, SanitizeURL(s))
	}
	if u.User != nil {
		return nil, fmt.Errorf("%w: credentials in url are not allowed", ErrInvalidUpstreamURL)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, fmt.Errorf("%w: %q must not carry a query or fragment", ErrInvalidUpstreamURL, SanitizeURL(s))
	}

	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u, nil
}

// NormalizeHost validates and normalizes a host for comparison and labelling.
func NormalizeHost(raw string) (string, error) {
	host := strings.TrimSpace(raw)
	if host == "" {
		return "", fmt.Errorf("host is empty")
	}
	if strings.Contains(host, "://") {
		return "", fmt.Errorf("host must not include scheme: %s", raw)
	}
	if strings.Contains(host, "/") {
		return "", fmt.Errorf("host must not include path: %s", raw)
	}
	if strings.Contains(host, "@") {
		return "", fmt.Errorf("host must not include userinfo: %s", raw)
	}
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	}
	if strings.Contains(host, ":") && net.ParseIP(host) == nil {
		return "", fmt.Errorf("host must not include port: %s", raw)
	}
	if strings.Contains(host, "%") {
		return "", fmt.Errorf("host must not include zone: %s", raw)
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return "", fmt.Errorf("host is empty")
	}
	if ip := net.ParseIP(host); ip != nil {
		return strings.ToLower(ip.String()), nil
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", raw, err)
	}
	return strings.ToLower(ascii), nil
}

// HostLabel returns the normalized "host" or "host:port" of an upstream URL.
// It is the key under which per-host results, errors and metrics are reported.
func HostLabel(u *url.URL) string {
	host, err := NormalizeHost(u.Hostname())
	if err != nil {
		host = strings.ToLower(u.Hostname())
	}
	if port := u.Port(); port != "" {
		return net.JoinHostPort(host, port)
	}
	if strings.Contains(host, ":") {
		return "[" + host + "]"
	}
	return host
}
