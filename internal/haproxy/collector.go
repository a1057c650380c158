// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package haproxy

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ManuGH/clusterview/internal/cache"
	"github.com/ManuGH/clusterview/internal/log"
	"github.com/ManuGH/clusterview/internal/metrics"
	"github.com/ManuGH/clusterview/internal/platform/httpx"
	xnet "github.com/ManuGH/clusterview/internal/platform/net"
	"github.com/ManuGH/clusterview/internal/resilience"
	"github.com/ManuGH/clusterview/internal/telemetry"
	"github.com/ManuGH/clusterview/internal/upstream"
)

const (
	cacheKey       = "haproxy:snapshot"
	defaultTimeout = 5 * time.Second
)

// Config lists the stats pages to scrape.
type Config struct {
	Servers  []string      `yaml:"servers"`
	Auth     Credentials   `yaml:"auth,omitempty"`
	Verify   bool          `yaml:"verify"`
	Timeout  time.Duration `yaml:"timeout"`
	Breaker  BreakerConfig `yaml:"breaker"`
	MaxHosts int           `yaml:"maxConcurrency,omitempty"`
}

// BreakerConfig tunes the per-server circuit breakers.
type BreakerConfig struct {
	Threshold    int           `yaml:"threshold"`
	ResetTimeout time.Duration `yaml:"resetTimeout"`
}

// HostError is a failed server in a partial snapshot.
type HostError struct {
	Host  string `json:"host"`
	Error string `json:"error"`
}

// Snapshot is the result of one collection across all servers.
type Snapshot struct {
	Groups
	Errors []HostError `json:"errors"`
}

type server struct {
	url     *url.URL
	host    string
	breaker *resilience.CircuitBreaker
}

// Collector scrapes all configured servers concurrently.
type Collector struct {
	servers []server
	fetcher *Fetcher
	limit   int
	cache   cache.Cache
	ttl     time.Duration
	group   singleflight.Group
}

// NewCollector validates the server list. A nil cache disables caching.
func NewCollector(cfg Config, c cache.Cache, ttl time.Duration) (*Collector, error) {
	if len(cfg.Servers) == 0 {
		return nil, fmt.Errorf("haproxy: %w", upstream.ErrNotConfigured)
	}
	if c == nil {
		c = cache.NewNoOpCache()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	col := &Collector{
		limit: cfg.MaxHosts,
		cache: c,
		ttl:   ttl,
	}
	seen := make(map[string]bool, len(cfg.Servers))
	for _, raw := range cfg.Servers {
		u, err := xnet.ParseUpstreamURL(raw)
		if err != nil {
			return nil, fmt.Errorf("haproxy server %q: %w", xnet.SanitizeURL(raw), err)
		}
		host := xnet.HostLabel(u)
		if seen[host] {
			return nil, fmt.Errorf("haproxy server %q listed twice", host)
		}
		seen[host] = true
		col.servers = append(col.servers, server{
			url:     u,
			host:    host,
			breaker: resilience.NewCircuitBreaker("haproxy:"+host, cfg.Breaker.Threshold, cfg.Breaker.ResetTimeout),
		})
	}

	tlsCfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: !cfg.Verify, //nolint:gosec
	}
	client := httpx.NewClient(timeout, httpx.WithTLSConfig(tlsCfg), httpx.WithTracing())
	col.fetcher = NewFetcher(client, cfg.Auth)
	return col, nil
}

// Hosts returns the host labels of the configured servers in order.
func (c *Collector) Hosts() []string {
	out := make([]string, len(c.servers))
	for i, s := range c.servers {
		out[i] = s.host
	}
	return out
}

// Breakers returns the per-server circuit breakers in server order.
func (c *Collector) Breakers() []*resilience.CircuitBreaker {
	out := make([]*resilience.CircuitBreaker, len(c.servers))
	for i, s := range c.servers {
		out[i] = s.breaker
	}
	return out
}

// Collect returns the current snapshot. Concurrent callers share one scrape.
// Hosts that fail are listed in Errors; if every host fails the error wraps
// ErrAllHostsFailed and each host's FetchError.
func (c *Collector) Collect(ctx context.Context) (*Snapshot, error) {
	if raw, ok := c.cache.Get(ctx, cacheKey); ok {
		var snap Snapshot
		if err := json.Unmarshal(raw, &snap); err == nil {
			return &snap, nil
		}
	}

	// The scrape outlives a single caller's cancellation; the shared result
	// is still useful to the others and fills the cache.
	ch := c.group.DoChan(cacheKey, func() (any, error) {
		return c.collect(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

func (c *Collector) collect(ctx context.Context) (*Snapshot, error) {
	results := make([][]Row, len(c.servers))
	errs := make([]error, len(c.servers))

	var g errgroup.Group
	if c.limit > 0 {
		g.SetLimit(c.limit)
	}
	for i, srv := range c.servers {
		g.Go(func() error {
			sctx, span := telemetry.Tracer("clusterview/haproxy").Start(ctx, "haproxy.fetch",
				trace.WithAttributes(telemetry.UpstreamAttributes(upstreamName, srv.host, "stats")...))
			err := srv.breaker.Execute(sctx, func(ctx context.Context) error {
				rows, err := c.fetcher.Fetch(ctx, srv.url)
				results[i] = rows
				return err
			})
			telemetry.End(span, err)
			metrics.SetUpstreamHostUp(upstreamName, srv.host, err == nil)
			if err != nil {
				errs[i] = &FetchError{Host: srv.host, Err: err}
			}
			// Per-host failures are reported in the snapshot, not here.
			return nil
		})
	}
	_ = g.Wait()

	snap := &Snapshot{Groups: NewGroups(), Errors: []HostError{}}
	var failed []error
	for i, srv := range c.servers {
		if errs[i] != nil {
			failed = append(failed, errs[i])
			snap.Errors = append(snap.Errors, HostError{Host: srv.host, Error: errs[i].Error()})
			logger := log.WithComponentFromContext(ctx, "haproxy")
			logger.Warn().Err(errs[i]).Str("event", "haproxy.fetch.failed").Str(log.FieldHost, srv.host).Msg("stats server failed")
			continue
		}
		snap.Merge(Classify(srv.host, results[i]))
	}

	if len(failed) == len(c.servers) {
		return nil, fmt.Errorf("%w: %w", ErrAllHostsFailed, errors.Join(failed...))
	}

	metrics.RecordProxyCounts(snap.Counts())
	if len(failed) == 0 {
		if raw, err := json.Marshal(snap); err == nil {
			c.cache.Set(ctx, cacheKey, raw, c.ttl)
		}
	}
	return snap, nil
}
