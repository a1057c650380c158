// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ManuGH/clusterview/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(promhttp.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRouteMetrics(t *testing.T) {
	metrics.SetRouteTableSize(2)
	metrics.RecordRouteResolution("Ping", true)
	metrics.RecordRouteResolution("Ping", false)

	body := scrape(t)
	assert.Contains(t, body, "clusterview_route_table_routes 2")
	assert.Contains(t, body, `clusterview_route_resolutions_total{outcome="matched",route="Ping"}`)
	assert.Contains(t, body, `clusterview_route_resolutions_total{outcome="unmatched",route=""}`)
}

func TestUpstreamMetrics(t *testing.T) {
	metrics.ObserveUpstreamRequest("haproxy", 12*time.Millisecond, nil)
	metrics.ObserveUpstreamRequest("lxd", time.Second, errors.New("boom"))
	metrics.SetUpstreamHostUp("haproxy", "lb1", false)

	body := scrape(t)
	assert.Contains(t, body, `clusterview_upstream_request_duration_seconds_count{outcome="success",upstream="haproxy"}`)
	assert.Contains(t, body, `clusterview_upstream_request_duration_seconds_count{outcome="failure",upstream="lxd"}`)
	assert.Contains(t, body, `clusterview_upstream_host_up{host="lb1",upstream="haproxy"} 0`)
}

func TestInventoryGaugesAreReplaced(t *testing.T) {
	metrics.RecordInventory(map[string]map[string]int{"node1": {"Running": 3}})
	metrics.RecordInventory(map[string]map[string]int{"node2": {"Stopped": 1}})

	body := scrape(t)
	assert.NotContains(t, body, `location="node1"`)
	assert.Contains(t, body, `clusterview_instances{location="node2",status="Stopped"} 1`)
}

func TestCircuitBreakerState(t *testing.T) {
	metrics.SetCircuitBreakerState("haproxy:lb1", "open")
	metrics.RecordCircuitBreakerTrip("haproxy:lb1", "threshold")

	body := scrape(t)
	assert.Contains(t, body, `clusterview_circuit_breaker_state{component="haproxy:lb1",state="open"} 1`)
	assert.Contains(t, body, `clusterview_circuit_breaker_state{component="haproxy:lb1",state="closed"} 0`)
	assert.Contains(t, body, `clusterview_circuit_breaker_trips_total{component="haproxy:lb1",reason="threshold"}`)
}

func TestCacheAndReloadCounters(t *testing.T) {
	metrics.RecordCacheLookup("memory", true)
	metrics.RecordConfigReload(nil)
	metrics.RecordProxyCounts(1, 2, 3)

	body := scrape(t)
	assert.Contains(t, body, `clusterview_cache_lookups_total{backend="memory",result="hit"}`)
	assert.Contains(t, body, `clusterview_config_reloads_total{outcome="success"}`)
	assert.Contains(t, body, `clusterview_haproxy_proxies{kind="worker"} 3`)
}
