// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	routeTableSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "clusterview_route_table_routes",
		Help: "Number of routes in the UI route table",
	})

	routeResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clusterview_route_resolutions_total",
		Help: "UI route resolutions by route name and outcome",
	}, []string{"route", "outcome"}) // outcome=matched|unmatched

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clusterview_upstream_request_duration_seconds",
		Help:    "Latency of upstream requests (LXD, HAProxy stats)",
		Buckets: prometheus.DefBuckets,
	}, []string{"upstream", "outcome"}) // outcome=success|failure

	upstreamHostsUp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "clusterview_upstream_host_up",
		Help: "Whether the last fetch from an upstream host succeeded (1) or failed (0)",
	}, []string{"upstream", "host"})

	inventoryInstances = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "clusterview_instances",
		Help: "LXD instances by cluster location and status (last fetch)",
	}, []string{"location", "status"})

	haproxyProxies = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "clusterview_haproxy_proxies",
		Help: "HAProxy stats rows by kind (frontend|backend|worker) in the last collection",
	}, []string{"kind"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clusterview_cache_lookups_total",
		Help: "Snapshot cache lookups by backend and result",
	}, []string{"backend", "result"}) // result=hit|miss

	configReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clusterview_config_reloads_total",
		Help: "Configuration reload attempts by outcome",
	}, []string{"outcome"})
)

// SetRouteTableSize records the number of routes served.
func SetRouteTableSize(n int) { routeTableSize.Set(float64(n)) }

// RecordRouteResolution counts a UI route lookup.
func RecordRouteResolution(route string, matched bool) {
	outcome := "matched"
	if !matched {
		outcome = "unmatched"
		route = ""
	}
	routeResolutions.WithLabelValues(route, outcome).Inc()
}

// ObserveUpstreamRequest records the latency and outcome of one upstream call.
func ObserveUpstreamRequest(upstream string, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	upstreamRequestDuration.WithLabelValues(upstream, outcome).Observe(d.Seconds())
}

// SetUpstreamHostUp marks an upstream host as reachable or not.
func SetUpstreamHostUp(upstream, host string, up bool) {
	v := 0.0
	if up {
		v = 1.0
	}
	upstreamHostsUp.WithLabelValues(upstream, host).Set(v)
}

// RecordInventory replaces the instance gauges with the latest counts.
func RecordInventory(counts map[string]map[string]int) {
	inventoryInstances.Reset()
	for location, byStatus := range counts {
		for status, n := range byStatus {
			inventoryInstances.WithLabelValues(location, status).Set(float64(n))
		}
	}
}

// RecordProxyCounts records how many rows of each kind were collected.
func RecordProxyCounts(frontends, backends, workers int) {
	haproxyProxies.WithLabelValues("frontend").Set(float64(frontends))
	haproxyProxies.WithLabelValues("backend").Set(float64(backends))
	haproxyProxies.WithLabelValues("worker").Set(float64(workers))
}

// RecordCacheLookup counts a snapshot cache lookup.
func RecordCacheLookup(backend string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(backend, result).Inc()
}

// RecordConfigReload counts a configuration reload attempt.
func RecordConfigReload(err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	configReloads.WithLabelValues(outcome).Inc()
}
