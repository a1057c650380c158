// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/clusterview/internal/log"
	"github.com/rs/zerolog"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "CLUSTERVIEW_"

func isSensitive(key string) bool {
	lower := strings.ToLower(key)
	return strings.Contains(lower, "password") || strings.Contains(lower, "token") || strings.Contains(lower, "key")
}

// ParseString reads a string from environment variable or returns default value.
// It logs the source (environment or default) for observability.
func ParseString(key, defaultValue string) string {
	return parseStringWithLogger(log.WithComponent("config"), key, defaultValue)
}

func parseStringWithLogger(logger zerolog.Logger, key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	if isSensitive(key) {
		logger.Debug().
			Str("key", key).
			Str("source", "environment").
			Bool("sensitive", true).
			Msg("using environment variable")
		return value
	}
	logger.Debug().
		Str("key", key).
		Str("value", value).
		Str("source", "environment").
		Msg("using environment variable")
	return value
}

// ParseInt reads an integer from environment variable or returns default value.
// It falls back to default on parse errors.
func ParseInt(key string, defaultValue int) int {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Int("default", defaultValue).
			Msg("invalid integer in environment variable, using default")
		return defaultValue
	}
	logger.Debug().Str("key", key).Int("value", i).Str("source", "environment").Msg("using environment variable")
	return i
}

// ParseFloat reads a float from environment variable or returns default value.
func ParseFloat(key string, defaultValue float64) float64 {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Float64("default", defaultValue).
			Msg("invalid float in environment variable, using default")
		return defaultValue
	}
	logger.Debug().Str("key", key).Float64("value", f).Str("source", "environment").Msg("using environment variable")
	return f
}

// ParseDuration reads a duration in Go duration format (e.g. "5s").
// It falls back to default on parse errors or empty variables.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Dur("default", defaultValue).
			Msg("invalid duration in environment variable, using default")
		return defaultValue
	}
	logger.Debug().Str("key", key).Dur("value", d).Str("source", "environment").Msg("using environment variable")
	return d
}

// ParseBool reads a boolean from environment variable or returns default value.
// It accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	logger.Warn().
		Str("key", key).
		Str("value", v).
		Bool("default", defaultValue).
		Msg("invalid boolean in environment variable, using default")
	return defaultValue
}

// ParseList reads a comma separated list, dropping blank entries.
func ParseList(key string, defaultValue []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// applyEnv overlays CLUSTERVIEW_* variables on cfg.
func applyEnv(cfg *Config) {
	p := EnvPrefix
	cfg.Listen = ParseString(p+"LISTEN", cfg.Listen)
	// BASE_URL is honoured for parity with static builds that bake the base in.
	cfg.BasePath = ParseString("BASE_URL", cfg.BasePath)
	cfg.BasePath = ParseString(p+"BASE_PATH", cfg.BasePath)
	cfg.RouterMode = ParseString(p+"ROUTER_MODE", cfg.RouterMode)
	cfg.APIPrefix = ParseString(p+"API_PREFIX", cfg.APIPrefix)
	cfg.LogLevel = ParseString(p+"LOG_LEVEL", cfg.LogLevel)
	cfg.CSP = ParseString(p+"CSP", cfg.CSP)

	cfg.Metrics.Enabled = ParseBool(p+"METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.Listen = ParseString(p+"METRICS_LISTEN", cfg.Metrics.Listen)

	cfg.CORS.AllowedOrigins = ParseList(p+"CORS_ALLOWED_ORIGINS", cfg.CORS.AllowedOrigins)

	cfg.RateLimit.Enabled = ParseBool(p+"RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.RPS = ParseInt(p+"RATE_LIMIT_RPS", cfg.RateLimit.RPS)

	cfg.Cache.TTL = ParseDuration(p+"CACHE_TTL", cfg.Cache.TTL)
	cfg.Cache.Redis.Addr = ParseString(p+"REDIS_ADDR", cfg.Cache.Redis.Addr)
	cfg.Cache.Redis.Password = ParseString(p+"REDIS_PASSWORD", cfg.Cache.Redis.Password)
	cfg.Cache.Redis.DB = ParseInt(p+"REDIS_DB", cfg.Cache.Redis.DB)

	cfg.Tracing.Enabled = ParseBool(p+"TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = ParseString(p+"TRACING_EXPORTER", cfg.Tracing.Exporter)
	cfg.Tracing.Endpoint = ParseString(p+"TRACING_ENDPOINT", cfg.Tracing.Endpoint)
	cfg.Tracing.Sampling = ParseFloat(p+"TRACING_SAMPLING", cfg.Tracing.Sampling)

	cfg.Server.ReadTimeout = ParseDuration(p+"SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = ParseDuration(p+"SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = ParseDuration(p+"SERVER_IDLE_TIMEOUT", cfg.Server.IdleTimeout)
	cfg.Server.ShutdownTimeout = ParseDuration(p+"SERVER_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)

	cfg.LXD.Server = ParseString(p+"LXD_SERVER", cfg.LXD.Server)
	cfg.LXD.Certificate = ParseString(p+"LXD_CERTIFICATE", cfg.LXD.Certificate)
	cfg.LXD.Key = ParseString(p+"LXD_KEY", cfg.LXD.Key)
	cfg.LXD.Verify = ParseBool(p+"LXD_VERIFY", cfg.LXD.Verify)
	cfg.LXD.Timeout = ParseDuration(p+"LXD_TIMEOUT", cfg.LXD.Timeout)
	cfg.LXD.Project = ParseString(p+"LXD_PROJECT", cfg.LXD.Project)

	cfg.HAProxy.Servers = ParseList(p+"HAPROXY_SERVERS", cfg.HAProxy.Servers)
	cfg.HAProxy.Auth.Username = ParseString(p+"HAPROXY_USERNAME", cfg.HAProxy.Auth.Username)
	cfg.HAProxy.Auth.Password = ParseString(p+"HAPROXY_PASSWORD", cfg.HAProxy.Auth.Password)
	cfg.HAProxy.Verify = ParseBool(p+"HAPROXY_VERIFY", cfg.HAProxy.Verify)
	cfg.HAProxy.Timeout = ParseDuration(p+"HAPROXY_TIMEOUT", cfg.HAProxy.Timeout)
}
