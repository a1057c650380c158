// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ManuGH/clusterview/internal/log"
	"gopkg.in/yaml.v3"
)

// Loader resolves a Config from defaults, an optional YAML file and the environment.
type Loader struct {
	path string
}

// NewLoader returns a loader for the given file. An empty path means ENV-only.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Path returns the config file path, if any.
func (l *Loader) Path() string {
	return l.path
}

// Load loads configuration with precedence: ENV > File > Defaults.
func (l *Loader) Load() (Config, error) {
	cfg := Default()

	if l.path != "" {
		if err := l.loadFile(&cfg); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", l.path, err)
		}
	}

	applyEnv(&cfg)
	l.resolvePaths(&cfg)
	normalize(&cfg)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	logger := log.WithComponent("config")
	logger.Debug().
		Str("event", "config.loaded").
		Str("path", l.path).
		Str("base_path", cfg.BasePath).
		Str("router_mode", cfg.RouterMode).
		Msg("configuration loaded")
	return cfg, nil
}

// loadFile decodes the YAML file over cfg with STRICT parsing.
// Unknown fields are fatal to prevent silent misconfiguration.
func (l *Loader) loadFile(cfg *Config) error {
	path := filepath.Clean(l.path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("%w: %w", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

// resolvePaths makes the LXD key pair relative to the config file directory.
func (l *Loader) resolvePaths(cfg *Config) {
	if l.path == "" {
		return
	}
	dir := filepath.Dir(l.path)
	for _, p := range []*string{&cfg.LXD.Certificate, &cfg.LXD.Key} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

func normalize(cfg *Config) {
	cfg.BasePath = normalizePrefix(cfg.BasePath)
	cfg.APIPrefix = normalizePrefix(cfg.APIPrefix)
	cfg.RouterMode = strings.ToLower(strings.TrimSpace(cfg.RouterMode))
	cfg.Tracing.Exporter = strings.ToLower(strings.TrimSpace(cfg.Tracing.Exporter))
}

// normalizePrefix trims whitespace and trailing slashes; the root stays "/".
func normalizePrefix(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return p
	}
	trimmed := strings.TrimRight(p, "/")
	if trimmed == "" {
		return "/"
	}
	return trimmed
}
