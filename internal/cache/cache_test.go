// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(0)
	defer func() { _ = cache.Close() }()

	cache.Set(ctx, "key1", []byte("value1"), 5*time.Minute)

	val, ok := cache.Get(ctx, "key1")
	require.True(t, ok, "expected to find key1")
	assert.Equal(t, []byte("value1"), val)

	_, ok = cache.Get(ctx, "nonexistent")
	assert.False(t, ok, "expected not to find nonexistent key")

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
}

func TestMemoryCache_Expiration(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	cache := newMemoryCache(0, clock.Now)

	cache.Set(ctx, "shortlived", []byte("value"), time.Second)
	_, ok := cache.Get(ctx, "shortlived")
	require.True(t, ok)

	clock.now = clock.now.Add(2 * time.Second)
	_, ok = cache.Get(ctx, "shortlived")
	assert.False(t, ok, "expected key to be expired")

	assert.Equal(t, 1, cache.deleteExpired())
	assert.Equal(t, 0, cache.Stats().CurrentSize)
	assert.Equal(t, int64(1), cache.Stats().Evictions)
}

func TestMemoryCache_ZeroTTLNotStored(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(0)

	cache.Set(ctx, "k", []byte("v"), 0)
	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(0)

	cache.Set(ctx, "key1", []byte("value1"), 5*time.Minute)
	cache.Delete(ctx, "key1")

	_, ok := cache.Get(ctx, "key1")
	assert.False(t, ok)
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	cache := NewMemoryCache(10 * time.Millisecond)
	require.NoError(t, cache.Close())
	require.NoError(t, cache.Close())
}

func TestNoOpCache(t *testing.T) {
	ctx := context.Background()
	cache := NewNoOpCache()

	cache.Set(ctx, "key1", []byte("value1"), time.Minute)
	_, ok := cache.Get(ctx, "key1")
	assert.False(t, ok)
	assert.Equal(t, CacheStats{}, cache.Stats())
}

type snapshot struct {
	Hosts []string `json:"hosts"`
}

func TestRemember(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(0)

	calls := 0
	load := func(context.Context) (snapshot, error) {
		calls++
		return snapshot{Hosts: []string{"lb1", "lb2"}}, nil
	}

	first, err := Remember(ctx, cache, "services", time.Minute, load)
	require.NoError(t, err)
	second, err := Remember(ctx, cache, "services", time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestRemember_ErrorsNotCached(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(0)
	boom := errors.New("boom")

	_, err := Remember(ctx, cache, "k", time.Minute, func(context.Context) (snapshot, error) {
		return snapshot{}, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), cache.Stats().Sets)
}

func TestRemember_CorruptEntryReloaded(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(0)
	cache.Set(ctx, "k", []byte("{not json"), time.Minute)

	v, err := Remember(ctx, cache, "k", time.Minute, func(context.Context) (snapshot, error) {
		return snapshot{Hosts: []string{"a"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, v.Hosts)
}
