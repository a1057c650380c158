// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/clusterview/internal/config"
)

func TestPerformStartupChecks_Defaults(t *testing.T) {
	require.NoError(t, PerformStartupChecks(context.Background(), config.Default()))
}

func TestPerformStartupChecks_ListenAddr(t *testing.T) {
	cfg := config.Default()
	cfg.Listen = "localhost:99999"

	err := PerformStartupChecks(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid listen port")
}

func TestPerformStartupChecks_LXDKeyPair(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "client.crt")
	require.NoError(t, os.WriteFile(cert, []byte("cert"), 0o600))

	cfg := config.Default()
	cfg.LXD.Server = "https://lxd.example.org:8443"
	cfg.LXD.Certificate = cert

	err := PerformStartupChecks(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOTH certificate and key")

	cfg.LXD.Key = filepath.Join(dir, "missing.key")
	err = PerformStartupChecks(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(cfg.LXD.Key, []byte("key"), 0o600))
	require.NoError(t, PerformStartupChecks(context.Background(), cfg))
}
