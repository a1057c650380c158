// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package upstream classifies failures of the systems clusterview reads from.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrNotConfigured = errors.New("upstream: not configured")
	ErrNotFound      = errors.New("upstream: resource not found")
	ErrForbidden     = errors.New("upstream: access forbidden")
	ErrUnavailable   = errors.New("upstream: host unreachable or transport failure")
	ErrServerError   = errors.New("upstream: internal error (5xx)")
	ErrBadResponse   = errors.New("upstream: invalid response format or malformed data")
	ErrTimeout       = errors.New("upstream: request timed out")
)

const maxBodyInError = 256

var secretPattern = regexp.MustCompile(`(?i)(token|sid|password|passwd|secret|key)=\S+`)

// Error wraps a sentinel with the context of the failed call.
type Error struct {
	Sentinel  error
	Upstream  string // lxd|haproxy
	Host      string
	Operation string
	Status    int
	Body      string
	Err       error // Nested lower-level error (e.g. net.Error)
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s: %v", e.Upstream, e.Operation, e.Sentinel)
	if e.Host != "" {
		msg = fmt.Sprintf("%s: %s %s: %v", e.Upstream, e.Host, e.Operation, e.Sentinel)
	}
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Err}
}

// Wrap classifies a transport error or an unexpected HTTP status into an *Error.
func Wrap(upstreamName, host, op string, err error, status int, body []byte) error {
	return &Error{
		Sentinel:  classify(err, status),
		Upstream:  upstreamName,
		Host:      host,
		Operation: op,
		Status:    status,
		Body:      redact(body),
		Err:       err,
	}
}

// Status classifies an unexpected HTTP status whose decoded reason is cause.
func Status(upstreamName, host, op string, status int, cause error) error {
	return &Error{
		Sentinel:  classify(nil, status),
		Upstream:  upstreamName,
		Host:      host,
		Operation: op,
		Status:    status,
		Err:       cause,
	}
}

// BadResponse reports a response that arrived but could not be decoded.
func BadResponse(upstreamName, host, op string, err error) error {
	return &Error{
		Sentinel:  ErrBadResponse,
		Upstream:  upstreamName,
		Host:      host,
		Operation: op,
		Err:       err,
	}
}

func classify(err error, status int) error {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ErrTimeout
		}
		return ErrUnavailable
	}

	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrForbidden
	case status >= 500:
		return ErrServerError
	default:
		return ErrBadResponse
	}
}

func redact(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxBodyInError {
		s = s[:maxBodyInError] + "..."
	}
	return secretPattern.ReplaceAllString(s, "$1=[REDACTED]")
}
