// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ManuGH/clusterview/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "clusterview",
		Short: "Operations dashboard for LXD clusters and HAProxy",
		Long: `clusterview serves a single-page dashboard with two views:

  Containers  LXD instances grouped by cluster member
  Ping        HAProxy frontends, backends and servers

Without a subcommand it runs the server (same as "clusterview serve").`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), resolveConfigPath(configPath))
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to config file (YAML); defaults to $"+config.EnvPrefix+"CONFIG")

	root.AddCommand(
		serveCmd(&configPath),
		routesCmd(&configPath),
		configCmd(&configPath),
		lxdCmd(&configPath),
		versionCmd(),
	)
	return root
}

func resolveConfigPath(flagValue string) string {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p
	}
	return config.ParseString(config.EnvPrefix+"CONFIG", "")
}
