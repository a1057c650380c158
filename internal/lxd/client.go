// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package lxd reads the instance inventory of an LXD cluster over its REST API.
package lxd

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ManuGH/clusterview/internal/metrics"
	"github.com/ManuGH/clusterview/internal/platform/httpx"
	xnet "github.com/ManuGH/clusterview/internal/platform/net"
	"github.com/ManuGH/clusterview/internal/upstream"
)

const (
	upstreamName   = "lxd"
	defaultTimeout = 10 * time.Second
	maxBody        = 16 << 20
)

// Config describes how to reach the LXD API.
type Config struct {
	Server      string        `yaml:"server"`
	Certificate string        `yaml:"certificate"`
	Key         string        `yaml:"key"`
	Verify      bool          `yaml:"verify"`
	Timeout     time.Duration `yaml:"timeout"`
	Project     string        `yaml:"project,omitempty"`
}

// Client is a minimal LXD REST client authenticated with a TLS client certificate.
type Client struct {
	base    *url.URL
	host    string
	project string
	http    *http.Client
}

// NewClient validates cfg and loads the client key pair.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Server == "" {
		return nil, fmt.Errorf("lxd: %w", upstream.ErrNotConfigured)
	}
	base, err := xnet.ParseUpstreamURL(cfg.Server, "https")
	if err != nil {
		return nil, fmt.Errorf("lxd server: %w", err)
	}

	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		// LXD servers usually present a self-signed certificate.
		InsecureSkipVerify: !cfg.Verify, //nolint:gosec
	}
	switch {
	case cfg.Certificate != "" && cfg.Key != "":
		pair, err := tls.LoadX509KeyPair(cfg.Certificate, cfg.Key)
		if err != nil {
			return nil, fmt.Errorf("lxd: load client certificate: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{pair}
	case cfg.Certificate != "" || cfg.Key != "":
		return nil, ErrIncompleteKeyPair
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		base:    base,
		host:    xnet.HostLabel(base),
		project: cfg.Project,
		http:    httpx.NewClient(timeout, httpx.WithTLSConfig(tlsCfg), httpx.WithTracing()),
	}, nil
}

// Host returns the normalized host label of the server.
func (c *Client) Host() string { return c.host }

// response is the LXD REST envelope.
type response struct {
	Type       string          `json:"type"`
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	ErrorCode  int             `json:"error_code"`
	Error      string          `json:"error"`
	Metadata   json.RawMessage `json:"metadata"`
}

// Instances lists all instances with their state (GET /1.0/instances?recursion=1).
func (c *Client) Instances(ctx context.Context) ([]Instance, error) {
	q := url.Values{"recursion": {"1"}}
	if c.project != "" {
		q.Set("project", c.project)
	}

	var out []Instance
	if err := c.get(ctx, "instances", "/1.0/instances", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping checks that the API answers (GET /1.0).
func (c *Client) Ping(ctx context.Context) error {
	var server struct {
		APIVersion string `json:"api_version"`
	}
	return c.get(ctx, "server", "/1.0", nil, &server)
}

func (c *Client) get(ctx context.Context, op, path string, q url.Values, into any) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstreamRequest(upstreamName, time.Since(start), err) }()

	u := *c.base
	u.Path += path
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return upstream.Wrap(upstreamName, c.host, op, err, 0, nil)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return upstream.Wrap(upstreamName, c.host, op, err, 0, nil)
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return upstream.Wrap(upstreamName, c.host, op, err, 0, nil)
	}

	var env response
	if err := json.Unmarshal(body, &env); err != nil {
		if res.StatusCode != http.StatusOK {
			return upstream.Wrap(upstreamName, c.host, op, nil, res.StatusCode, body)
		}
		return upstream.BadResponse(upstreamName, c.host, op, err)
	}

	if env.Type == "error" || res.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: env.ErrorCode, Message: env.Error}
		if apiErr.StatusCode == 0 {
			apiErr.StatusCode = res.StatusCode
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(res.StatusCode)
		}
		return upstream.Status(upstreamName, c.host, op, apiErr.StatusCode, apiErr)
	}
	if env.Type != "sync" {
		return upstream.BadResponse(upstreamName, c.host, op, fmt.Errorf("unexpected response type %q", env.Type))
	}

	if err := json.Unmarshal(env.Metadata, into); err != nil {
		return upstream.BadResponse(upstreamName, c.host, op, err)
	}
	return nil
}
