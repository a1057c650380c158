// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ManuGH/clusterview/internal/config"
	"github.com/ManuGH/clusterview/internal/log"
	"github.com/ManuGH/clusterview/internal/lxd"
)

func lxdCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lxd",
		Short: "LXD helpers",
	}
	cmd.AddCommand(lxdGencertCmd(configPath))
	return cmd
}

func lxdGencertCmd(configPath *string) *cobra.Command {
	var (
		certPath, keyPath, name string
		force                   bool
	)
	cmd := &cobra.Command{
		Use:   "gencert",
		Short: "Create the client certificate used to authenticate against LXD",
		Long: `Create a self-signed client certificate and key. Paths default to
lxd.certificate and lxd.key from the configuration. Trust the certificate on
the cluster afterwards:

  lxc config trust add <certificate>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if certPath == "" || keyPath == "" {
				cfg, err := config.NewLoader(resolveConfigPath(*configPath)).Load()
				if err != nil {
					return err
				}
				if certPath == "" {
					certPath = cfg.LXD.Certificate
				}
				if keyPath == "" {
					keyPath = cfg.LXD.Key
				}
			}
			if certPath == "" || keyPath == "" {
				return errors.New("no certificate/key path (set lxd.certificate and lxd.key or pass --cert and --key)")
			}

			req := lxd.CertRequest{
				CertPath:   certPath,
				KeyPath:    keyPath,
				CommonName: name,
				Logger:     log.WithComponent("lxd"),
			}
			out := cmd.OutOrStdout()
			if force {
				if err := lxd.GenerateClientCertificate(req); err != nil {
					return err
				}
			} else {
				generated, err := lxd.EnsureClientCertificate(req)
				if err != nil {
					return err
				}
				if !generated {
					fmt.Fprintf(out, "✓ %s already exists (use --force to replace)\n", certPath)
					return nil
				}
			}
			fmt.Fprintf(out, "✓ wrote %s and %s\n", certPath, keyPath)
			fmt.Fprintf(out, "  trust it on the cluster: lxc config trust add %s\n", certPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&certPath, "cert", "", "certificate path (default lxd.certificate)")
	cmd.Flags().StringVar(&keyPath, "key", "", "private key path (default lxd.key)")
	cmd.Flags().StringVar(&name, "name", "clusterview", "certificate common name")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing key pair")
	return cmd
}
