// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ManuGH/clusterview/internal/daemon"
	"github.com/ManuGH/clusterview/internal/log"
	"github.com/ManuGH/clusterview/internal/version"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), resolveConfigPath(*configPath))
		},
	}
}

func runServe(parent context.Context, configPath string) error {
	if parent == nil {
		parent = context.Background()
	}
	// Safe defaults until the config is loaded.
	log.Configure(log.Config{Level: "info", Version: version.Version})
	logger := log.WithComponent("main")

	ctx, stop := daemon.WaitForShutdown()
	defer stop()
	go func() {
		select {
		case <-parent.Done():
			stop()
		case <-ctx.Done():
		}
	}()

	d, err := daemon.Bootstrap(ctx, daemon.Options{
		ConfigPath: configPath,
		Version:    version.Version,
	})
	if err != nil {
		logger.Error().
			Err(err).
			Str("event", "startup.failed").
			Str("config_path", configPath).
			Msg("failed to start clusterview")
		return err
	}

	source := "env+defaults"
	if configPath != "" {
		source = "file"
	}
	logger = log.WithComponent("main")
	logger.Info().
		Str("event", "config.loaded").
		Str("source", source).
		Str("path", configPath).
		Str("version", version.String()).
		Msg("starting clusterview")

	if err := d.Run(ctx); err != nil {
		logger.Error().Err(err).Str("event", "daemon.failed").Msg("daemon stopped with error")
		return err
	}
	logger.Info().Str("event", "daemon.stopped").Msg("clusterview stopped")
	return nil
}
