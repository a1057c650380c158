// SPDX-License-Identifier: MIT
package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getGaugeVecValue(t *testing.T, gaugeVec *prometheus.GaugeVec, labels ...string) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, gaugeVec.WithLabelValues(labels...).Write(metric))
	return metric.GetGauge().GetValue()
}

func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, counterVec.WithLabelValues(labels...).Write(metric))
	return metric.GetCounter().GetValue()
}

func TestSetCircuitBreakerState_OneHot(t *testing.T) {
	SetCircuitBreakerState("haproxy:lb1", "open")

	assert.Equal(t, 1.0, getGaugeVecValue(t, circuitBreakerState, "haproxy:lb1", "open"))
	assert.Equal(t, 0.0, getGaugeVecValue(t, circuitBreakerState, "haproxy:lb1", "closed"))
	assert.Equal(t, 0.0, getGaugeVecValue(t, circuitBreakerState, "haproxy:lb1", "half-open"))

	SetCircuitBreakerState("haproxy:lb1", "closed")
	assert.Equal(t, 0.0, getGaugeVecValue(t, circuitBreakerState, "haproxy:lb1", "open"))
	assert.Equal(t, 1.0, getGaugeVecValue(t, circuitBreakerState, "haproxy:lb1", "closed"))
}

func TestRecordCircuitBreakerTrip(t *testing.T) {
	before := getCounterVecValue(t, circuitBreakerTrips, "lxd:node1", "threshold_exceeded")
	RecordCircuitBreakerTrip("lxd:node1", "threshold_exceeded")
	RecordCircuitBreakerTrip("lxd:node1", "threshold_exceeded")
	assert.Equal(t, before+2, getCounterVecValue(t, circuitBreakerTrips, "lxd:node1", "threshold_exceeded"))
}
