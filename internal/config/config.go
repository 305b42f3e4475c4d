// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

// Package config loads runtime configuration from a YAML file, command-line
// flags, and the DATABASE_URL environment variable, in increasing precedence.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config holds the full runtime configuration.
type Config struct {
	Database Database `koanf:"database"`
	HTTP     HTTP     `koanf:"http"`
	Metrics  Metrics  `koanf:"metrics"`
	SMTP     SMTP     `koanf:"smtp"`
	Log      Log      `koanf:"log"`
}

// Database holds relational store settings.
type Database struct {
	URL string `koanf:"url"`
}

// HTTP holds API server settings.
type HTTP struct {
	Addr string `koanf:"addr"`
}

// Metrics holds observability server settings. An empty Addr disables it.
type Metrics struct {
	Addr string `koanf:"addr"`
}

// SMTP holds credential-notification mail settings. An empty Host disables
// outbound mail; provisioning then logs credentials delivery as skipped.
type SMTP struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

// Log holds logging settings.
type Log struct {
	Format string `koanf:"format"`
}

// Default returns the configuration defaults.
func Default() Config {
	return Config{
		HTTP:    HTTP{Addr: "127.0.0.1:8080"},
		Metrics: Metrics{Addr: "127.0.0.1:9100"},
		SMTP:    SMTP{Port: 587},
		Log:     Log{Format: "json"},
	}
}

// Load builds a Config from the optional YAML file at path, then overlays
// values from flags (flag names map to keys with dashes as dots, e.g.
// --database-url sets database.url). DATABASE_URL fills the database URL
// when nothing else set it.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
			return strings.ReplaceAll(key, "-", "."), value
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").
				With("operation", "load flags").
				Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").
			With("operation", "unmarshal config").
			Wrap(err)
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that have a closed set of accepted values.
// Presence of the database URL is checked by the commands that need it.
func (c Config) Validate() error {
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.Log.Format).
			Errorf("log format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if c.SMTP.Host != "" && c.SMTP.Port <= 0 {
		return oops.Code("CONFIG_INVALID").
			With("smtp_port", c.SMTP.Port).
			Errorf("smtp port must be positive when smtp host is set")
	}
	return nil
}
