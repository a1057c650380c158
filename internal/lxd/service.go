// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package lxd

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/clusterview/internal/cache"
	"github.com/ManuGH/clusterview/internal/log"
	"github.com/ManuGH/clusterview/internal/metrics"
	"github.com/ManuGH/clusterview/internal/resilience"
	"github.com/ManuGH/clusterview/internal/telemetry"
)

const cacheKey = "lxd:inventory"

// Lister is the part of Client the Service needs.
type Lister interface {
	Instances(ctx context.Context) ([]Instance, error)
	Host() string
}

// Service serves the grouped inventory behind a circuit breaker and a
// short-lived snapshot cache.
type Service struct {
	client  Lister
	breaker *resilience.CircuitBreaker
	cache   cache.Cache
	ttl     time.Duration
}

// NewService wires a client to its breaker and cache. A nil cache disables caching.
func NewService(client Lister, breaker *resilience.CircuitBreaker, c cache.Cache, ttl time.Duration) *Service {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &Service{client: client, breaker: breaker, cache: c, ttl: ttl}
}

// Breaker exposes the upstream circuit breaker for health reporting.
func (s *Service) Breaker() *resilience.CircuitBreaker { return s.breaker }

// Inventory returns instances grouped by location.
func (s *Service) Inventory(ctx context.Context) (Inventory, error) {
	return cache.Remember(ctx, s.cache, cacheKey, s.ttl, s.load)
}

func (s *Service) load(ctx context.Context) (inv Inventory, err error) {
	ctx, span := telemetry.Tracer("clusterview/lxd").Start(ctx, "lxd.inventory",
		trace.WithAttributes(telemetry.UpstreamAttributes(upstreamName, s.client.Host(), "instances")...))
	defer func() { telemetry.End(span, err) }()

	var instances []Instance
	err = s.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		instances, err = s.client.Instances(ctx)
		return err
	})
	metrics.SetUpstreamHostUp(upstreamName, s.client.Host(), err == nil)
	if err != nil {
		logger := log.WithComponentFromContext(ctx, "lxd")
		logger.Warn().Err(err).Str("event", "lxd.inventory.failed").Str(log.FieldHost, s.client.Host()).Msg("failed to list instances")
		return nil, err
	}

	inv = GroupByLocation(instances)
	metrics.RecordInventory(inv.Counts())
	return inv, nil
}
