// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	HTTPRouteKey = "http.route"

	UpstreamNameKey      = "upstream.name"
	UpstreamHostKey      = "upstream.host"
	UpstreamOperationKey = "upstream.operation"

	NavigationRouteKey   = "navigation.route"
	NavigationMatchedKey = "navigation.matched"

	CacheHitKey = "cache.hit"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// UpstreamAttributes describes a call to an upstream host. Empty values are omitted.
func UpstreamAttributes(name, host, operation string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if name != "" {
		attrs = append(attrs, attribute.String(UpstreamNameKey, name))
	}
	if host != "" {
		attrs = append(attrs, attribute.String(UpstreamHostKey, host))
	}
	if operation != "" {
		attrs = append(attrs, attribute.String(UpstreamOperationKey, operation))
	}
	return attrs
}

// NavigationAttributes describes a UI path resolution.
func NavigationAttributes(route string, matched bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(NavigationRouteKey, route),
		attribute.Bool(NavigationMatchedKey, matched),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
