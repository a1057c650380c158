// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"time"

	"github.com/ManuGH/clusterview/internal/haproxy"
	"github.com/ManuGH/clusterview/internal/lxd"
)

const (
	DefaultListen    = ":8080"
	DefaultBasePath  = "/"
	DefaultAPIPrefix = "/api"
	DefaultCSP       = "default-src 'self'; img-src 'self' data:; style-src 'self'; script-src 'self'; frame-ancestors 'none'"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:     DefaultListen,
		BasePath:   DefaultBasePath,
		RouterMode: "history",
		APIPrefix:  DefaultAPIPrefix,
		LogLevel:   "info",
		CSP:        DefaultCSP,
		Metrics: MetricsConfig{
			Enabled: true,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     20,
		},
		Cache: CacheConfig{
			TTL: 5 * time.Second,
		},
		Tracing: TracingConfig{
			Exporter: "grpc",
			Endpoint: "localhost:4317",
			Sampling: 1.0,
		},
		Server: ServerConfig{
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		LXD: lxd.Config{
			Timeout: 10 * time.Second,
		},
		HAProxy: haproxy.Config{
			Timeout: 5 * time.Second,
			Breaker: haproxy.BreakerConfig{
				Threshold:    3,
				ResetTimeout: 30 * time.Second,
			},
		},
	}
}
