// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ManuGH/clusterview/internal/config"
	"github.com/ManuGH/clusterview/internal/daemon"
	"github.com/ManuGH/clusterview/internal/navigation"
)

func routesCmd(configPath *string) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the UI route table",
		Long: `Print the client-side route table for the configured base path and
router mode. With --json the output is the manifest served at {api}/routes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewLoader(resolveConfigPath(*configPath)).Load()
			if err != nil {
				return err
			}
			engine, err := navigation.New(daemon.RouteTable(cfg))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(engine.Manifest())
			}

			fmt.Fprintf(out, "mode: %s  base: %s\n", engine.Mode(), engine.Base())
			for _, r := range engine.Table().Routes() {
				href, err := engine.Href(r.Name, nil)
				if err != nil {
					href = "-"
				}
				fmt.Fprintf(out, "%-12s %-10s %-12s %s\n", r.Name, r.Path, r.View, href)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the route manifest as JSON")
	return cmd
}
