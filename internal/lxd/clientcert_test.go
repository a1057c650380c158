// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package lxd

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func certRequest(dir string) CertRequest {
	return CertRequest{
		CertPath: filepath.Join(dir, "certs", "client.crt"),
		KeyPath:  filepath.Join(dir, "certs", "client.key"),
		Logger:   zerolog.Nop(),
	}
}

func TestEnsureClientCertificate_Generates(t *testing.T) {
	req := certRequest(t.TempDir())
	req.CommonName = "dash-01"

	generated, err := EnsureClientCertificate(req)
	require.NoError(t, err)
	assert.True(t, generated)

	pair, err := tls.LoadX509KeyPair(req.CertPath, req.KeyPath)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(pair.Certificate[0])
	require.NoError(t, err)
	assert.Equal(t, "dash-01", cert.Subject.CommonName)
	assert.Contains(t, cert.ExtKeyUsage, x509.ExtKeyUsageClientAuth)
	assert.WithinDuration(t, time.Now().Add(DefaultCertValidity), cert.NotAfter, time.Hour)

	info, err := os.Stat(req.KeyPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestEnsureClientCertificate_KeepsExistingPair(t *testing.T) {
	req := certRequest(t.TempDir())
	_, err := EnsureClientCertificate(req)
	require.NoError(t, err)
	before, err := os.ReadFile(req.CertPath)
	require.NoError(t, err)

	generated, err := EnsureClientCertificate(req)
	require.NoError(t, err)
	assert.False(t, generated)

	after, err := os.ReadFile(req.CertPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestEnsureClientCertificate_ReplacesIncompletePair(t *testing.T) {
	req := certRequest(t.TempDir())
	_, err := EnsureClientCertificate(req)
	require.NoError(t, err)
	require.NoError(t, os.Remove(req.KeyPath))

	generated, err := EnsureClientCertificate(req)
	require.NoError(t, err)
	assert.True(t, generated)

	_, err = tls.LoadX509KeyPair(req.CertPath, req.KeyPath)
	assert.NoError(t, err)
}

func TestEnsureClientCertificate_RequiresBothPaths(t *testing.T) {
	_, err := EnsureClientCertificate(CertRequest{CertPath: "client.crt"})
	assert.ErrorIs(t, err, ErrIncompleteKeyPair)
}

func TestGeneratedCertificate_UsableByClient(t *testing.T) {
	req := certRequest(t.TempDir())
	require.NoError(t, GenerateClientCertificate(req))

	_, err := NewClient(Config{Server: "https://lxd.example:8443", Certificate: req.CertPath, Key: req.KeyPath})
	assert.NoError(t, err)
}
