// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/ManuGH/clusterview/internal/config"
	"github.com/ManuGH/clusterview/internal/log"
	"github.com/rs/zerolog"
)

// PerformStartupChecks validates the environment before the server starts.
// Missing upstreams only warn: their views answer 503 until configured.
func PerformStartupChecks(ctx context.Context, cfg config.Config) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("Running pre-flight startup checks...")

	if err := checkListenAddr(logger, "listen", cfg.Listen); err != nil {
		return err
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Listen != "" {
		if err := checkListenAddr(logger, "metrics.listen", cfg.Metrics.Listen); err != nil {
			return err
		}
	}

	if err := checkLXD(logger, cfg); err != nil {
		return fmt.Errorf("lxd check failed: %w", err)
	}

	if len(cfg.HAProxy.Servers) == 0 {
		logger.Warn().Msg("no HAProxy stats servers configured; the services endpoint will answer 503")
	} else {
		logger.Info().Int("count", len(cfg.HAProxy.Servers)).Msg("✓ HAProxy stats servers configured")
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Info().Msg("✅ All startup checks passed")
	return nil
}

func checkListenAddr(logger zerolog.Logger, field, addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid %s address %q: %w", field, addr, err)
	}
	portNum, err := strconv.Atoi(port)
	if err != nil || portNum < 0 || portNum > 65535 {
		return fmt.Errorf("invalid %s port %q in %q", field, port, addr)
	}
	logger.Info().Str("addr", addr).Msgf("✓ %s address is valid", field)
	return nil
}

func checkLXD(logger zerolog.Logger, cfg config.Config) error {
	if cfg.LXD.Server == "" {
		logger.Warn().Msg("LXD server not configured; the containers endpoint will answer 503")
		return nil
	}
	if cfg.LXD.Certificate == "" || cfg.LXD.Key == "" {
		return fmt.Errorf("LXD client authentication requires BOTH certificate and key")
	}
	if err := checkFileReadable(cfg.LXD.Certificate); err != nil {
		return fmt.Errorf("certificate: %w", err)
	}
	if err := checkFileReadable(cfg.LXD.Key); err != nil {
		return fmt.Errorf("key: %w", err)
	}
	if !cfg.LXD.Verify {
		logger.Warn().
			Str(log.FieldUpstream, "lxd").
			Msg("LXD server certificate verification is disabled")
	}
	logger.Info().Msg("✓ LXD client certificate is readable")
	return nil
}

func checkFileReadable(path string) error {
	f, err := os.Open(path) // #nosec G304 -- path comes from operator config; verifying readability is expected
	if err != nil {
		return err
	}
	return f.Close()
}
