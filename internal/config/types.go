// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"time"

	"github.com/ManuGH/clusterview/internal/haproxy"
	"github.com/ManuGH/clusterview/internal/lxd"
)

// Config is the complete daemon configuration.
type Config struct {
	Listen     string `yaml:"listen"`
	BasePath   string `yaml:"basePath"`
	RouterMode string `yaml:"routerMode"`
	APIPrefix  string `yaml:"apiPrefix"`
	LogLevel   string `yaml:"logLevel"`
	CSP        string `yaml:"csp"`

	Metrics   MetricsConfig   `yaml:"metrics"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Cache     CacheConfig     `yaml:"cache"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Server    ServerConfig    `yaml:"server"`

	LXD     lxd.Config     `yaml:"lxd"`
	HAProxy haproxy.Config `yaml:"haproxy"`
}

// MetricsConfig controls the Prometheus endpoint. An empty Listen serves
// /metrics on the API listener.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen,omitempty"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type RateLimitConfig struct {
	Enabled bool `yaml:"enabled"`
	RPS     int  `yaml:"rps"`
}

// CacheConfig selects the snapshot cache. A zero TTL disables caching; a
// non-empty Redis.Addr switches from the in-memory backend to redis.
type CacheConfig struct {
	TTL   time.Duration `yaml:"ttl"`
	Redis RedisConfig   `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

type TracingConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Exporter string  `yaml:"exporter"` // grpc or http
	Endpoint string  `yaml:"endpoint"`
	Sampling float64 `yaml:"sampling"`
}

type ServerConfig struct {
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}
