// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the console configuration.
//
// # Description
//
// Values are resolved in this order, highest first:
//
//  1. Command line flags bound through Options.Flags
//  2. Environment variables prefixed CONSOLE_ ("server.addr" is
//     CONSOLE_SERVER_ADDR), including those loaded from a .env file
//  3. The YAML config file
//  4. Built-in defaults
//
// The config file is Options.File when set. Otherwise console.yaml is
// searched in the working directory and in ~/.aleutian; a missing file is
// not an error.
//
// Watch follows the config file after loading it. Only the rate limit
// budget and ui.rows_per_page are applied while serving; other keys need a
// restart.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CONSOLE"

// Config is the full console configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Log       LogConfig       `mapstructure:"log"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	UI        UIConfig        `mapstructure:"ui"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	Mode            string        `mapstructure:"mode" validate:"oneof=debug release test"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// StorageConfig configures the Badger store.
type StorageConfig struct {
	Path       string        `mapstructure:"path" validate:"required_unless=InMemory true"`
	InMemory   bool          `mapstructure:"in_memory"`
	GCInterval time.Duration `mapstructure:"gc_interval" validate:"gte=0"`
	// Fixture is imported on startup when set.
	Fixture string `mapstructure:"fixture"`
}

// LogConfig configures pkg/logging.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	JSON  bool   `mapstructure:"json"`
	Dir   string `mapstructure:"dir"`
}

// TracingConfig configures the OTLP trace exporter.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint" validate:"required_if=Enabled true"`
	ServiceName string  `mapstructure:"service_name" validate:"required"`
	SampleRatio float64 `mapstructure:"sample_ratio" validate:"gte=0,lte=1"`
}

// TokenConfig is one static API token.
type TokenConfig struct {
	Token  string   `mapstructure:"token" validate:"required"`
	UserID string   `mapstructure:"user" validate:"required"`
	Roles  []string `mapstructure:"roles" validate:"dive,oneof=admin viewer"`
}

// AuthConfig lists the accepted API tokens. Authentication is disabled
// when the list is empty.
type AuthConfig struct {
	Tokens []TokenConfig `mapstructure:"tokens" validate:"dive"`
}

// Enabled reports whether any token is configured.
func (a AuthConfig) Enabled() bool {
	return len(a.Tokens) > 0
}

// RateLimitConfig configures the per-client limiter.
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute" validate:"gt=0"`
	Burst             int  `mapstructure:"burst" validate:"gt=0"`
}

// UIConfig configures list rendering.
type UIConfig struct {
	RowsPerPage int `mapstructure:"rows_per_page" validate:"gt=0,lte=10000"`
}

// Options controls where Load looks for values.
type Options struct {
	// File is an explicit config file. It must exist when set.
	File string

	// EnvFile is loaded into the environment before reading overrides.
	// Defaults to ".env"; a missing file is ignored.
	EnvFile string

	// Flags are bound according to FlagKeys.
	Flags *pflag.FlagSet
}

// FlagKeys maps command line flag names to configuration keys.
var FlagKeys = map[string]string{
	"addr":      "server.addr",
	"db":        "storage.path",
	"in-memory": "storage.in_memory",
	"fixture":   "storage.fixture",
	"log-level": "log.level",
	"log-json":  "log.json",
}

var configValidate = validator.New()

func setDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("storage.path", filepath.Join(home, ".aleutian", "console", "data"))
	v.SetDefault("storage.in_memory", false)
	v.SetDefault("storage.gc_interval", 10*time.Minute)
	v.SetDefault("storage.fixture", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.dir", "")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.service_name", "aleutian-console")
	v.SetDefault("tracing.sample_ratio", 1.0)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_minute", 600)
	v.SetDefault("rate_limit.burst", 50)

	v.SetDefault("ui.rows_per_page", 50)
}

// Load resolves and validates the configuration.
//
// # Outputs
//
//   - *Config: Resolved configuration.
//   - error: Unreadable .env or config file, a flag that cannot be bound,
//     or a validation failure.
func Load(opts Options) (*Config, error) {
	cfg, _, err := load(opts)
	return cfg, err
}

// Watch loads the configuration like Load and then follows the config file
// for changes.
//
// # Description
//
// Every later revision of the file is decoded and validated with the same
// precedence as Load. Valid revisions go to onChange; invalid ones go to
// onError and are otherwise ignored. Both callbacks run on the watcher
// goroutine. Nothing is watched when no config file was found.
//
// # Inputs
//
//   - opts: Same as Load.
//   - onChange: Receives each valid revision. Required.
//   - onError: Receives rejected revisions. May be nil.
//
// # Outputs
//
//   - *Config: The initial configuration.
//   - error: As for Load.
func Watch(opts Options, onChange func(*Config), onError func(error)) (*Config, error) {
	cfg, v, err := load(opts)
	if err != nil {
		return nil, err
	}
	if v.ConfigFileUsed() == "" {
		return cfg, nil
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		next, err := decode(v)
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		onChange(next)
	})
	v.WatchConfig()
	return cfg, nil
}

func load(opts Options) (*Config, *viper.Viper, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range FlagKeys {
			flag := opts.Flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("console")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".aleutian"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := configValidate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
