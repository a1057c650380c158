// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHolder(t *testing.T, body string) (*Holder, string) {
	t.Helper()
	path := writeConfig(t, body)
	loader := NewLoader(path)
	cfg, err := loader.Load()
	require.NoError(t, err)
	return NewHolder(cfg, loader), path
}

func TestHolderReloadAppliesUpstreamSettings(t *testing.T) {
	h, path := newTestHolder(t, "listen: \":9000\"\ncache:\n  ttl: 5s\n")

	updates := make(chan Config, 1)
	h.Subscribe(updates)

	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":9100"
basePath: /moved
cache:
  ttl: 1m
haproxy:
  servers: [http://lb1:8404]
`), 0o600))
	require.NoError(t, h.Reload(context.Background()))

	got := h.Get()
	assert.Equal(t, time.Minute, got.Cache.TTL)
	assert.Equal(t, []string{"http://lb1:8404"}, got.HAProxy.Servers)
	assert.Equal(t, ":9000", got.Listen, "listen requires a restart")
	assert.Equal(t, "/", got.BasePath, "base path requires a restart")

	select {
	case cfg := <-updates:
		assert.Equal(t, got, cfg)
	default:
		t.Fatal("listener was not notified")
	}
}

func TestHolderReloadFailureKeepsCurrent(t *testing.T) {
	h, path := newTestHolder(t, "cache:\n  ttl: 5s\n")

	require.NoError(t, os.WriteFile(path, []byte("cache:\n  ttl: 1m\nunknown: 1\n"), 0o600))
	err := h.Reload(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownConfigField)
	assert.Equal(t, 5*time.Second, h.Get().Cache.TTL)
}

func TestHolderFullListenerIsSkipped(t *testing.T) {
	h, _ := newTestHolder(t, "")

	full := make(chan Config)
	h.Subscribe(full)

	done := make(chan error, 1)
	go func() { done <- h.Reload(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reload blocked on a listener")
	}
}

func TestHolderWatcherReloadsOnAtomicReplace(t *testing.T) {
	h, path := newTestHolder(t, "cache:\n  ttl: 5s\n")
	h.debounce = 20 * time.Millisecond

	updates := make(chan Config, 4)
	h.Subscribe(updates)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, h.StartWatcher(ctx))

	cfg := h.Get()
	cfg.Cache.TTL = 42 * time.Second
	require.NoError(t, WriteFile(path, cfg, true))

	select {
	case got := <-updates:
		assert.Equal(t, 42*time.Second, got.Cache.TTL)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not reload the config")
	}
}

func TestHolderWatcherDisabledWithoutFile(t *testing.T) {
	h := NewHolder(Default(), NewLoader(""))
	require.NoError(t, h.StartWatcher(context.Background()))
}
