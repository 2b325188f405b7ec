package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, TokenBackendFile, cfg.TokenBackend)
	assert.Equal(t, "default", cfg.Profile)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.File)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, "api_url: https://file.example/\nprofile: work\nlog_level: debug\ns3_use_ssl: true\n")
	t.Setenv("GOSSHUB_PROFILE", "env-profile")
	t.Setenv("GOSSHUB_TIMEOUT_SECONDS", "5")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--log-level", "warn"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "https://file.example", cfg.APIURL)
	assert.Equal(t, "env-profile", cfg.Profile)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.S3UseSSL)
	assert.Equal(t, path, cfg.File)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{APIURL: "http://x", Timeout: time.Second, TokenBackend: TokenBackendFile, TokenFile: "/tmp/token"}
	require.NoError(t, base.Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing api url", func(c *Config) { c.APIURL = "" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"unknown backend", func(c *Config) { c.TokenBackend = "etcd" }},
		{"file backend without path", func(c *Config) { c.TokenFile = "" }},
		{"redis backend without url", func(c *Config) { c.TokenBackend = TokenBackendRedis }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
