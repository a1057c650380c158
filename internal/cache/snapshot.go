// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/clusterview/internal/telemetry"
)

// Remember returns the cached JSON value for key, or calls load and caches its
// result for ttl. Load errors are returned unchanged and never cached.
func Remember[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	span := trace.SpanFromContext(ctx)
	if raw, ok := c.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			span.SetAttributes(attribute.Bool(telemetry.CacheHitKey, true))
			return v, nil
		}
		c.Delete(ctx, key)
	}
	span.SetAttributes(attribute.Bool(telemetry.CacheHitKey, false))

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if raw, err := json.Marshal(v); err == nil {
		c.Set(ctx, key, raw, ttl)
	}
	return v, nil
}
