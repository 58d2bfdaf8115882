// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

// Package config loads server configuration from an optional YAML file
// overlaid with command-line flags.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Default values applied before any file or flag overrides.
const (
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultLogFormat   = "json"
	DefaultLogLevel    = "info"
	DefaultAuthMode    = "password"
)

// Config is the full server configuration tree.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// AuthConfig selects how login credentials are verified.
type AuthConfig struct {
	Mode string `koanf:"mode"`
}

// LogConfig controls slog output.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// MetricsConfig controls the metrics/health HTTP listener. An empty
// address disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// Default returns a Config populated with defaults only.
func Default() *Config {
	return &Config{
		Auth:    AuthConfig{Mode: DefaultAuthMode},
		Log:     LogConfig{Format: DefaultLogFormat, Level: DefaultLogLevel},
		Metrics: MetricsConfig{Addr: DefaultMetricsAddr},
	}
}

// Load builds a Config from defaults, then the YAML file at path (if
// non-empty), then any flags changed on the given flag set. Flag names
// map to config keys with dashes replaced by dots, so --database-url
// overrides database.url.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_INVALID").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
			return strings.ReplaceAll(key, "-", "."), value
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_INVALID").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}
	if c.Auth.Mode != "password" && c.Auth.Mode != "session" {
		return oops.Code("CONFIG_INVALID").Errorf("auth.mode must be 'password' or 'session', got %q", c.Auth.Mode)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return oops.Code("CONFIG_INVALID").Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	return nil
}
