// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package lxd

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompleteKeyPair is returned when only one of certificate and key is set.
	ErrIncompleteKeyPair = errors.New("lxd: certificate and key must be set together")
)

// APIError is an error response returned by the LXD REST API.
type APIError struct {
	StatusCode int    `json:"error_code"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lxd api: %s (code %d)", e.Message, e.StatusCode)
}
