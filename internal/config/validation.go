// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"

	xnet "github.com/ManuGH/clusterview/internal/platform/net"
)

// FieldError describes one invalid setting.
type FieldError struct {
	Field   string
	Message string
	Value   string
}

func (e FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s (got %q)", e.Field, e.Message, e.Value)
}

type validator struct {
	errs []error
}

func (v *validator) add(field, msg, value string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: msg, Value: value})
}

func (v *validator) prefix(field, value string) {
	if !strings.HasPrefix(value, "/") || strings.ContainsAny(value, "?# ") {
		v.add(field, "must start with / and contain no query, fragment or spaces", value)
	}
}

// underPrefix reports whether path equals prefix or is nested below it.
func underPrefix(path, prefix string) bool {
	path = strings.TrimRight(path, "/")
	prefix = strings.TrimRight(prefix, "/")
	if path == "" || prefix == "" {
		return false
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func (v *validator) listen(field, value string) {
	if _, _, err := net.SplitHostPort(value); err != nil {
		v.add(field, "must be host:port", value)
	}
}

func (v *validator) err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(v.errs...))
}

// Validate checks cfg and returns every problem at once, wrapped in ErrInvalidConfig.
func Validate(cfg Config) error {
	v := &validator{}

	v.listen("listen", cfg.Listen)
	if cfg.Metrics.Enabled && cfg.Metrics.Listen != "" {
		v.listen("metrics.listen", cfg.Metrics.Listen)
	}

	v.prefix("basePath", cfg.BasePath)
	v.prefix("apiPrefix", cfg.APIPrefix)
	if cfg.APIPrefix == "/" {
		v.add("apiPrefix", "must not be the root path", cfg.APIPrefix)
	}
	if underPrefix(cfg.BasePath, cfg.APIPrefix) {
		v.add("basePath", "must not equal or sit under apiPrefix "+cfg.APIPrefix, cfg.BasePath)
	}

	switch cfg.RouterMode {
	case "history", "hash":
	default:
		v.add("routerMode", "must be history or hash", cfg.RouterMode)
	}

	if cfg.LogLevel != "" {
		if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
			v.add("logLevel", "unknown level", cfg.LogLevel)
		}
	}

	if cfg.RateLimit.Enabled && cfg.RateLimit.RPS <= 0 {
		v.add("rateLimit.rps", "must be positive when rate limiting is enabled", fmt.Sprint(cfg.RateLimit.RPS))
	}

	if cfg.Cache.TTL < 0 {
		v.add("cache.ttl", "must not be negative", cfg.Cache.TTL.String())
	}
	if cfg.Cache.Redis.Addr != "" {
		v.listen("cache.redis.addr", cfg.Cache.Redis.Addr)
	}

	if cfg.Tracing.Enabled {
		switch cfg.Tracing.Exporter {
		case "grpc", "http":
		default:
			v.add("tracing.exporter", "must be grpc or http", cfg.Tracing.Exporter)
		}
		if cfg.Tracing.Endpoint == "" {
			v.add("tracing.endpoint", "is required when tracing is enabled", "")
		}
	}
	if cfg.Tracing.Sampling < 0 || cfg.Tracing.Sampling > 1 {
		v.add("tracing.sampling", "must be between 0 and 1", fmt.Sprint(cfg.Tracing.Sampling))
	}

	timeouts := []struct {
		field string
		d     time.Duration
	}{
		{"server.readTimeout", cfg.Server.ReadTimeout},
		{"server.writeTimeout", cfg.Server.WriteTimeout},
		{"server.idleTimeout", cfg.Server.IdleTimeout},
		{"server.shutdownTimeout", cfg.Server.ShutdownTimeout},
	}
	for _, t := range timeouts {
		if t.d < 0 {
			v.add(t.field, "must not be negative", t.d.String())
		}
	}

	if cfg.LXD.Server != "" {
		if _, err := xnet.ParseUpstreamURL(cfg.LXD.Server, "https"); err != nil {
			v.add("lxd.server", err.Error(), xnet.SanitizeURL(cfg.LXD.Server))
		}
		if (cfg.LXD.Certificate == "") != (cfg.LXD.Key == "") {
			v.add("lxd.certificate", "certificate and key must be set together", "")
		}
	}

	seen := make(map[string]struct{}, len(cfg.HAProxy.Servers))
	for i, s := range cfg.HAProxy.Servers {
		field := fmt.Sprintf("haproxy.servers[%d]", i)
		u, err := xnet.ParseUpstreamURL(s)
		if err != nil {
			v.add(field, err.Error(), xnet.SanitizeURL(s))
			continue
		}
		host := xnet.HostLabel(u)
		if _, dup := seen[host]; dup {
			v.add(field, "duplicate server", host)
		}
		seen[host] = struct{}{}
	}
	if cfg.HAProxy.Breaker.Threshold < 0 {
		v.add("haproxy.breaker.threshold", "must not be negative", fmt.Sprint(cfg.HAProxy.Breaker.Threshold))
	}

	return v.err()
}
