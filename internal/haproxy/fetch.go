// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package haproxy scrapes HAProxy stats pages and shapes them for the Ping view.
package haproxy

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ManuGH/clusterview/internal/metrics"
	xnet "github.com/ManuGH/clusterview/internal/platform/net"
	"github.com/ManuGH/clusterview/internal/upstream"
)

const (
	upstreamName = "haproxy"
	statsSuffix  = "/;csv;norefresh"
	headerPrefix = "# "
	maxStatsBody = 32 << 20
)

// Credentials for stats pages protected by "stats auth".
type Credentials struct {
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// Fetcher downloads and parses stats CSV.
type Fetcher struct {
	http *http.Client
	auth Credentials
}

// NewFetcher returns a fetcher using client for all requests.
func NewFetcher(client *http.Client, auth Credentials) *Fetcher {
	return &Fetcher{http: client, auth: auth}
}

// Fetch requests <server>/;csv;norefresh and returns its rows.
func (f *Fetcher) Fetch(ctx context.Context, server *url.URL) (rows []Row, err error) {
	host := xnet.HostLabel(server)
	start := time.Now()
	defer func() { metrics.ObserveUpstreamRequest(upstreamName, time.Since(start), err) }()

	u := *server
	u.Path += statsSuffix
	u.RawPath = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, upstream.Wrap(upstreamName, host, "stats", err, 0, nil)
	}
	if f.auth.Username != "" {
		req.SetBasicAuth(f.auth.Username, f.auth.Password)
	}

	res, err := f.http.Do(req)
	if err != nil {
		return nil, upstream.Wrap(upstreamName, host, "stats", err, 0, nil)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, upstream.Wrap(upstreamName, host, "stats", nil, res.StatusCode, body)
	}

	rows, err = ParseCSV(io.LimitReader(res.Body, maxStatsBody))
	if err != nil {
		return nil, upstream.BadResponse(upstreamName, host, "stats", err)
	}
	return rows, nil
}

// ParseCSV parses HAProxy "show stat" CSV. The header line starts with
// "# pxname"; the "# " prefix is dropped from the first column name.
func ParseCSV(r io.Reader) ([]Row, error) {
	br := bufio.NewReader(r)

	// Skip anything before the header line.
	var header string
	for {
		line, err := br.ReadString('\n')
		if strings.HasPrefix(line, headerPrefix+"pxname") {
			header = strings.TrimRight(line, "\r\n")
			break
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrMissingHeader
			}
			return nil, err
		}
	}

	columns := strings.Split(strings.TrimPrefix(header, headerPrefix), ",")

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	var rows []Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse stats csv: %w", err)
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			if col == "" || i >= len(record) {
				continue
			}
			row[col] = record[i]
		}
		if row["pxname"] == "" && row["svname"] == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
