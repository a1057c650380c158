// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

const redacted = "***"

// Redacted returns a copy of cfg with credentials masked, safe to print.
func (c Config) Redacted() Config {
	if c.Cache.Redis.Password != "" {
		c.Cache.Redis.Password = redacted
	}
	if c.HAProxy.Auth.Password != "" {
		c.HAProxy.Auth.Password = redacted
	}
	c.CORS.AllowedOrigins = append([]string(nil), c.CORS.AllowedOrigins...)
	c.HAProxy.Servers = append([]string(nil), c.HAProxy.Servers...)
	return c
}
