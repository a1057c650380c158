// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/ManuGH/clusterview/internal/log"
	"github.com/ManuGH/clusterview/internal/metrics"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const defaultDebounce = 500 * time.Millisecond

// Holder owns the live configuration and reloads it on demand or when the
// config file changes. Settings bound at start-up (listeners, base path, router
// mode, API prefix) survive a reload unchanged; the route table is never rebuilt.
type Holder struct {
	mu      sync.RWMutex
	current Config
	loader  *Loader
	logger  zerolog.Logger

	debounce time.Duration

	listenersMu sync.RWMutex
	listeners   []chan<- Config
}

// NewHolder wraps an already loaded configuration.
func NewHolder(initial Config, loader *Loader) *Holder {
	return &Holder{
		current:  initial,
		loader:   loader,
		logger:   log.WithComponent("config"),
		debounce: defaultDebounce,
	}
}

// Get returns the current configuration.
func (h *Holder) Get() Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload re-reads the configuration and notifies listeners. On failure the
// current configuration stays in place.
func (h *Holder) Reload(_ context.Context) error {
	h.logger.Info().Str("event", "config.reload_start").Msg("reloading configuration")

	next, err := h.loader.Load()
	metrics.RecordConfigReload(err)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("event", "config.reload_failed").
			Msg("failed to load new configuration")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	prev := h.current
	next = h.pinStatic(prev, next)
	h.current = next
	h.mu.Unlock()

	h.logChanges(prev, next)
	h.notify(next)

	h.logger.Info().
		Str("event", "config.reload_success").
		Msg("configuration reloaded successfully")
	return nil
}

// pinStatic carries over settings that cannot change without a restart.
func (h *Holder) pinStatic(prev, next Config) Config {
	pinned := []struct {
		name      string
		old, want *string
	}{
		{"listen", &prev.Listen, &next.Listen},
		{"basePath", &prev.BasePath, &next.BasePath},
		{"routerMode", &prev.RouterMode, &next.RouterMode},
		{"apiPrefix", &prev.APIPrefix, &next.APIPrefix},
		{"metrics.listen", &prev.Metrics.Listen, &next.Metrics.Listen},
	}
	for _, p := range pinned {
		if *p.old != *p.want {
			h.logger.Warn().
				Str("event", "config.restart_required").
				Str("field", p.name).
				Str("old", *p.old).
				Str("new", *p.want).
				Msg("setting changed on disk but requires a restart; keeping current value")
			*p.want = *p.old
		}
	}
	return next
}

// StartWatcher watches the config file until ctx is done. Without a file it is a no-op.
// The parent directory is watched so atomic replacements (rename over) are seen.
func (h *Holder) StartWatcher(ctx context.Context) error {
	path := h.loader.Path()
	if path == "" {
		h.logger.Info().
			Str("event", "config.watcher_disabled").
			Msg("config file watcher disabled (using ENV-only configuration)")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	h.logger.Info().
		Str("event", "config.watcher_started").
		Str("path", path).
		Msg("watching config file for changes")

	go h.watchLoop(ctx, watcher, filepath.Clean(path))
	return nil
}

func (h *Holder) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string) {
	defer func() { _ = watcher.Close() }()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str("event", "config.watcher_stopped").Msg("config watcher stopped")
			return

		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			h.logger.Debug().
				Str("event", "config.file_changed").
				Str("op", ev.Op.String()).
				Msg("config file changed")
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(h.debounce, func() {
				if ctx.Err() != nil {
					return
				}
				_ = h.Reload(ctx)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().
				Err(err).
				Str("event", "config.watcher_error").
				Msg("config watcher error")
		}
	}
}

// Subscribe registers a channel that receives every successfully reloaded
// configuration. Slow listeners are skipped, never blocked on.
func (h *Holder) Subscribe(ch chan<- Config) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

func (h *Holder) notify(cfg Config) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()

	for _, ch := range h.listeners {
		select {
		case ch <- cfg:
		default:
			h.logger.Warn().
				Str("event", "config.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}

func (h *Holder) logChanges(prev, next Config) {
	if prev.LXD.Server != next.LXD.Server {
		h.logger.Info().Str("old", prev.LXD.Server).Str("new", next.LXD.Server).Msg("config changed: lxd.server")
	}
	if !slices.Equal(prev.HAProxy.Servers, next.HAProxy.Servers) {
		h.logger.Info().Strs("old", prev.HAProxy.Servers).Strs("new", next.HAProxy.Servers).Msg("config changed: haproxy.servers")
	}
	if prev.Cache.TTL != next.Cache.TTL {
		h.logger.Info().Dur("old", prev.Cache.TTL).Dur("new", next.Cache.TTL).Msg("config changed: cache.ttl")
	}
	if prev.LogLevel != next.LogLevel {
		h.logger.Info().Str("old", prev.LogLevel).Str("new", next.LogLevel).Msg("config changed: logLevel")
	}
}
