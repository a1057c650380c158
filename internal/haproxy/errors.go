// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package haproxy

import (
	"errors"
	"fmt"

	"github.com/ManuGH/clusterview/internal/upstream"
)

var (
	// ErrMissingHeader is returned when the response is not a stats CSV.
	ErrMissingHeader = errors.New("haproxy: stats csv header not found")

	// ErrAllHostsFailed is returned by Collect when no server answered.
	ErrAllHostsFailed = errors.New("haproxy: all stats servers failed")
)

// FetchError records which stats server a failure belongs to.
type FetchError struct {
	Host string
	Err  error
}

func (e *FetchError) Error() string {
	// Upstream errors already name the host.
	var ue *upstream.Error
	if errors.As(e.Err, &ue) && ue.Host != "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("haproxy %s: %v", e.Host, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
