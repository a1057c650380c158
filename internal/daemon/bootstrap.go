// SPDX-License-Identifier: MIT

// Package daemon provides the core daemon bootstrapping and lifecycle management.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/clusterview/internal/api"
	"github.com/ManuGH/clusterview/internal/api/middleware"
	"github.com/ManuGH/clusterview/internal/cache"
	"github.com/ManuGH/clusterview/internal/config"
	"github.com/ManuGH/clusterview/internal/haproxy"
	"github.com/ManuGH/clusterview/internal/health"
	"github.com/ManuGH/clusterview/internal/log"
	"github.com/ManuGH/clusterview/internal/lxd"
	"github.com/ManuGH/clusterview/internal/navigation"
	"github.com/ManuGH/clusterview/internal/resilience"
	"github.com/ManuGH/clusterview/internal/routes"
	"github.com/ManuGH/clusterview/internal/telemetry"
	"github.com/ManuGH/clusterview/internal/upstream"
)

const (
	serviceName          = "clusterview"
	cacheCleanupInterval = time.Minute
)

// Options holds the command-line inputs of the daemon.
type Options struct {
	// ConfigPath is the YAML config file; empty means defaults plus ENV.
	ConfigPath string
	// Version is the build version
	Version string
}

// Daemon is the assembled clusterview process.
type Daemon struct {
	cfg     config.Config
	logger  zerolog.Logger
	server  *api.Server
	cache   cache.Cache
	manager Manager
	app     *App

	mu        sync.Mutex
	upstreams upstreamSet
}

// upstreamSet holds the data sources built from one configuration.
type upstreamSet struct {
	lxdClient *lxd.Client
	lxd       *lxd.Service
	haproxy   *haproxy.Collector
}

func (u upstreamSet) api() api.Upstreams {
	var out api.Upstreams
	if u.lxd != nil {
		out.Containers = u.lxd
	}
	if u.haproxy != nil {
		out.Services = u.haproxy
	}
	return out
}

func (u upstreamSet) breakers() []*resilience.CircuitBreaker {
	var out []*resilience.CircuitBreaker
	if u.lxd != nil {
		out = append(out, u.lxd.Breaker())
	}
	if u.haproxy != nil {
		out = append(out, u.haproxy.Breakers()...)
	}
	return out
}

// Bootstrap loads the configuration and assembles the daemon.
func Bootstrap(ctx context.Context, opts Options) (*Daemon, error) {
	loader := config.NewLoader(opts.ConfigPath)
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return New(ctx, cfg, config.NewHolder(cfg, loader), opts.Version)
}

// RouteTable builds the application route table for cfg.
func RouteTable(cfg config.Config) routes.Table {
	def := routes.Default(cfg.BasePath)
	return routes.New(routes.Mode(cfg.RouterMode), def.Base(), def.Routes()...)
}

// New wires every component from cfg. holder may be nil, which disables reloads.
func New(ctx context.Context, cfg config.Config, holder *config.Holder, version string) (*Daemon, error) {
	log.Configure(log.Config{
		Level:   cfg.LogLevel,
		Output:  os.Stdout,
		Service: serviceName,
		Version: version,
	})
	logger := log.WithComponent("daemon")

	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		return nil, err
	}

	engine, err := navigation.New(RouteTable(cfg))
	if err != nil {
		return nil, fmt.Errorf("route table: %w", err)
	}

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: version,
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.Sampling,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry init failed: %w", err)
	}
	if cfg.Tracing.Enabled {
		logger.Info().
			Str("event", "telemetry.initialized").
			Str("endpoint", cfg.Tracing.Endpoint).
			Float64("sampling_rate", cfg.Tracing.Sampling).
			Msg("Telemetry initialized")
	}

	d := &Daemon{cfg: cfg, logger: logger}
	var redisCache *cache.RedisCache
	if cfg.Cache.Redis.Addr != "" {
		redisCache, err = cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		}, log.WithComponent("cache"))
		if err != nil {
			_ = tp.Shutdown(ctx)
			return nil, err
		}
		d.cache = redisCache
	} else {
		d.cache = cache.NewMemoryCache(cacheCleanupInterval)
	}

	d.upstreams, err = buildUpstreams(cfg, d.cache)
	if err != nil {
		_ = d.cache.Close()
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	hm := health.NewManager(version)
	if cfg.LXD.Certificate != "" {
		hm.RegisterChecker(health.NewFileChecker("lxd-certificate", cfg.LXD.Certificate))
		hm.RegisterChecker(health.NewFileChecker("lxd-key", cfg.LXD.Key))
	}
	hm.RegisterChecker(health.NewFuncChecker("lxd", false, func(ctx context.Context) error {
		client := d.current().lxdClient
		if client == nil {
			return nil
		}
		return client.Ping(ctx)
	}))
	if redisCache != nil {
		hm.RegisterChecker(health.NewFuncChecker("redis", false, redisCache.HealthCheck))
	}
	hm.RegisterChecker(health.NewBreakerChecker("upstreams", func() []*resilience.CircuitBreaker {
		return d.current().breakers()
	}))

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = promhttp.Handler()
	}
	apiCfg := api.Config{
		APIPrefix: cfg.APIPrefix,
		UI:        navigation.UIConfig{CSP: cfg.CSP},
		Stack: middleware.StackConfig{
			EnableCORS:            len(cfg.CORS.AllowedOrigins) > 0,
			AllowedOrigins:        cfg.CORS.AllowedOrigins,
			EnableSecurityHeaders: true,
			CSP:                   cfg.CSP,
			EnableMetrics:         cfg.Metrics.Enabled,
			EnableLogging:         true,
			EnableRateLimit:       cfg.RateLimit.Enabled,
			RateLimitRPS:          cfg.RateLimit.RPS,
		},
	}
	if cfg.Tracing.Enabled {
		apiCfg.Stack.TracingService = serviceName
	}
	deps := Deps{Logger: logger}
	if cfg.Metrics.Listen == "" {
		apiCfg.Metrics = metricsHandler
	} else {
		deps.MetricsHandler = metricsHandler
	}
	d.server = api.New(apiCfg, engine, hm, d.upstreams.api())
	deps.APIHandler = d.server.Handler()

	d.manager, err = NewManager(ServerConfig{
		Listen:          cfg.Listen,
		MetricsListen:   cfg.Metrics.Listen,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, deps)
	if err != nil {
		_ = d.cache.Close()
		_ = tp.Shutdown(ctx)
		return nil, err
	}
	d.manager.RegisterShutdownHook("telemetry", tp.Shutdown)
	d.manager.RegisterShutdownHook("cache", func(context.Context) error { return d.cache.Close() })

	d.app = NewApp(logger, d.manager, holder, d.apply)

	logger.Info().
		Str("event", "daemon.ready").
		Str("listen", cfg.Listen).
		Str("base", engine.Base()).
		Str("mode", string(engine.Mode())).
		Bool("lxd", d.upstreams.lxd != nil).
		Int("haproxy_servers", len(cfg.HAProxy.Servers)).
		Msg("daemon assembled")
	return d, nil
}

// Run serves until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	return d.app.Run(ctx)
}

// Config returns the configuration the daemon was built with.
func (d *Daemon) Config() config.Config { return d.cfg }

func (d *Daemon) current() upstreamSet {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.upstreams
}

// apply rebuilds the upstream clients after a config reload. A configuration
// the clients reject leaves the running ones in place.
func (d *Daemon) apply(cfg config.Config) {
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		d.logger.Warn().Err(err).Str("event", "config.apply_failed").Msg("invalid log level")
	}

	set, err := buildUpstreams(cfg, d.cache)
	if err != nil {
		d.logger.Error().
			Err(err).
			Str("event", "config.apply_failed").
			Msg("keeping current upstreams")
		return
	}

	d.mu.Lock()
	d.upstreams = set
	d.mu.Unlock()
	d.server.SetUpstreams(set.api())

	d.logger.Info().
		Str("event", "config.applied").
		Bool("lxd", set.lxd != nil).
		Int("haproxy_servers", len(cfg.HAProxy.Servers)).
		Dur("cache_ttl", cfg.Cache.TTL).
		Msg("upstreams rebuilt")
}

// buildUpstreams constructs the configured sources; unconfigured ones stay nil.
func buildUpstreams(cfg config.Config, c cache.Cache) (upstreamSet, error) {
	var set upstreamSet

	client, err := lxd.NewClient(cfg.LXD)
	switch {
	case errors.Is(err, upstream.ErrNotConfigured):
	case err != nil:
		return set, err
	default:
		set.lxdClient = client
		breaker := resilience.NewCircuitBreaker("lxd:"+client.Host(), 0, 0)
		set.lxd = lxd.NewService(client, breaker, c, cfg.Cache.TTL)
	}

	col, err := haproxy.NewCollector(cfg.HAProxy, c, cfg.Cache.TTL)
	switch {
	case errors.Is(err, upstream.ErrNotConfigured):
	case err != nil:
		return set, err
	default:
		set.haproxy = col
	}
	return set, nil
}

// WaitForShutdown returns a context cancelled on interrupt/termination signals.
func WaitForShutdown() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
