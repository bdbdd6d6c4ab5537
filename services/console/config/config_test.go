// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// missingEnv keeps tests from picking up a .env in the package directory.
func missingEnv(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Options{EnvFile: missingEnv(t)})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 600, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 50, cfg.UI.RowsPerPage)
	assert.False(t, cfg.Auth.Enabled())
	assert.Contains(t, cfg.Storage.Path, filepath.Join(".aleutian", "console", "data"))
}

func TestLoad_ConfigFile(t *testing.T) {
	file := writeFile(t, "console.yaml", `
server:
  addr: ":9090"
  shutdown_timeout: 3s
storage:
  in_memory: true
log:
  level: debug
auth:
  tokens:
    - {token: s3cret, user: ops, roles: [admin]}
    - {token: r3ad, user: wallboard, roles: [viewer]}
ui:
  rows_per_page: 25
`)
	cfg, err := Load(Options{File: file, EnvFile: missingEnv(t)})
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Storage.InMemory)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 25, cfg.UI.RowsPerPage)
	require.Len(t, cfg.Auth.Tokens, 2)
	assert.Equal(t, TokenConfig{Token: "s3cret", UserID: "ops", Roles: []string{"admin"}}, cfg.Auth.Tokens[0])
	assert.True(t, cfg.Auth.Enabled())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	file := writeFile(t, "console.yaml", "server:\n  addr: \":9090\"\n")
	t.Setenv("CONSOLE_SERVER_ADDR", ":7070")
	t.Setenv("CONSOLE_RATE_LIMIT_BURST", "5")

	cfg, err := Load(Options{File: file, EnvFile: missingEnv(t)})
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
}

func TestLoad_DotEnv(t *testing.T) {
	const key = "CONSOLE_LOG_LEVEL"
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	envFile := writeFile(t, ".env", key+"=warn\n")
	cfg, err := Load(Options{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_FlagsWin(t *testing.T) {
	t.Setenv("CONSOLE_SERVER_ADDR", ":7070")

	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.String("addr", ":8080", "")
	flags.Bool("in-memory", false, "")
	require.NoError(t, flags.Parse([]string{"--addr", ":6060", "--in-memory"}))

	cfg, err := Load(Options{Flags: flags, EnvFile: missingEnv(t)})
	require.NoError(t, err)
	assert.Equal(t, ":6060", cfg.Server.Addr)
	assert.True(t, cfg.Storage.InMemory)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"log level":   "log:\n  level: loud\n",
		"ratio":       "tracing:\n  sample_ratio: 2\n",
		"role":        "auth:\n  tokens:\n    - {token: t, user: u, roles: [root]}\n",
		"token":       "auth:\n  tokens:\n    - {user: u}\n",
		"rows":        "ui:\n  rows_per_page: 0\n",
		"server mode": "server:\n  mode: fast\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			file := writeFile(t, "console.yaml", content)
			_, err := Load(Options{File: file, EnvFile: missingEnv(t)})
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(Options{File: filepath.Join(t.TempDir(), "nope.yaml"), EnvFile: missingEnv(t)})
	assert.Error(t, err)
}

// =============================================================================
// Watch
// =============================================================================

func TestWatch_AppliesValidRevisions(t *testing.T) {
	file := writeFile(t, "console.yaml", "ui:\n  rows_per_page: 25\n")

	var (
		mu      sync.Mutex
		latest  *Config
		lastErr error
	)
	cfg, err := Watch(Options{File: file, EnvFile: missingEnv(t)},
		func(c *Config) {
			mu.Lock()
			defer mu.Unlock()
			latest = c
		},
		func(err error) {
			mu.Lock()
			defer mu.Unlock()
			lastErr = err
		})
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.UI.RowsPerPage)

	require.NoError(t, os.WriteFile(file, []byte("ui:\n  rows_per_page: 0\n"), 0600))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return lastErr != nil
	}, 5*time.Second, 20*time.Millisecond)
	mu.Lock()
	assert.ErrorContains(t, lastErr, "invalid config")
	mu.Unlock()

	require.NoError(t, os.WriteFile(file, []byte("ui:\n  rows_per_page: 10\nrate_limit:\n  burst: 7\n"), 0600))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return latest != nil && latest.UI.RowsPerPage == 10 && latest.RateLimit.Burst == 7
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatch_NoConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Watch(Options{EnvFile: missingEnv(t)}, func(*Config) {
		t.Error("no file to watch")
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.UI.RowsPerPage)
}

func TestWatch_LoadError(t *testing.T) {
	_, err := Watch(Options{File: filepath.Join(t.TempDir(), "absent.yaml"), EnvFile: missingEnv(t)},
		func(*Config) {}, nil)
	assert.Error(t, err)
}
