// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package lxd

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
)

// DefaultCertValidity is how long a generated client certificate is valid.
const DefaultCertValidity = 10 * 365 * 24 * time.Hour

// CertRequest describes the client key pair to create.
type CertRequest struct {
	CertPath   string
	KeyPath    string
	CommonName string
	Validity   time.Duration
	Logger     zerolog.Logger
}

// EnsureClientCertificate creates a self-signed client certificate for LXD
// unless a complete pair already exists. An incomplete pair is replaced. The
// certificate still has to be trusted on the server (lxc config trust add).
func EnsureClientCertificate(req CertRequest) (generated bool, err error) {
	if req.CertPath == "" || req.KeyPath == "" {
		return false, ErrIncompleteKeyPair
	}

	certExists, err := fileExists(req.CertPath)
	if err != nil {
		return false, err
	}
	keyExists, err := fileExists(req.KeyPath)
	if err != nil {
		return false, err
	}
	if certExists && keyExists {
		req.Logger.Debug().
			Str("cert", req.CertPath).
			Str("key", req.KeyPath).
			Msg("LXD client certificate found")
		return false, nil
	}
	if certExists || keyExists {
		req.Logger.Warn().
			Bool("cert_exists", certExists).
			Bool("key_exists", keyExists).
			Msg("incomplete LXD client key pair found, regenerating both")
	}

	if err := GenerateClientCertificate(req); err != nil {
		return false, err
	}
	req.Logger.Info().
		Str("event", "lxd.cert.generated").
		Str("cert", req.CertPath).
		Str("key", req.KeyPath).
		Msg("generated LXD client certificate")
	return true, nil
}

// GenerateClientCertificate writes a new ECDSA P-256 key and a self-signed
// certificate usable for TLS client authentication.
func GenerateClientCertificate(req CertRequest) error {
	if req.CommonName == "" {
		req.CommonName = "clusterview"
	}
	if req.Validity <= 0 {
		req.Validity = DefaultCertValidity
	}

	for _, p := range []string{req.CertPath, req.KeyPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			return fmt.Errorf("create cert directory: %w", err)
		}
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate private key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("generate serial number: %w", err)
	}

	notBefore := time.Now().Add(-time.Minute)
	template := x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"clusterview"},
			CommonName:   req.CommonName,
		},
		NotBefore:             notBefore,
		NotAfter:              notBefore.Add(req.Validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return fmt.Errorf("create certificate: %w", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return fmt.Errorf("marshal private key: %w", err)
	}

	// Key first: a certificate without its key is useless.
	if err := writePEM(req.KeyPath, "EC PRIVATE KEY", keyDER, 0o600); err != nil {
		return err
	}
	return writePEM(req.CertPath, "CERTIFICATE", der, 0o644)
}

func writePEM(path, blockType string, der []byte, perm os.FileMode) error {
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	if err := renameio.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
}
