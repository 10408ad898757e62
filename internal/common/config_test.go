package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, "https://www.googleapis.com/coordinate/v1", config.API.BaseURL)
	assert.Equal(t, 100, config.API.PageSize)
	assert.Equal(t, 5, config.API.RateLimit)
	assert.Equal(t, "https://www.googleapis.com/auth/coordinate", config.Auth.Scope)
	assert.Equal(t, "client_secrets.json", config.Auth.ClientSecrets)
	assert.Equal(t, "user_credentials.json", config.Auth.CredentialsFile)
	assert.Equal(t, 10, config.Export.ProgressInterval)
	assert.Equal(t, "info", config.Logging.Level)

	require.NoError(t, config.Validate())
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coordex.toml")
	content := `
[api]
base_url = "https://api.example.com/coordinate/v1"
page_size = 25

[auth]
client_secrets = "/etc/coordex/client_secrets.json"

[logging]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/coordinate/v1", config.API.BaseURL)
	assert.Equal(t, 25, config.API.PageSize)
	assert.Equal(t, "/etc/coordex/client_secrets.json", config.Auth.ClientSecrets)
	assert.Equal(t, "debug", config.Logging.Level)

	// Untouched values keep their defaults.
	assert.Equal(t, 5, config.API.RateLimit)
	assert.Equal(t, "user_credentials.json", config.Auth.CredentialsFile)
}

func TestLoadFromFilesLaterOverridesEarlier(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")
	require.NoError(t, os.WriteFile(base, []byte("[api]\npage_size = 10\nrate_limit = 2\n"), 0644))
	require.NoError(t, os.WriteFile(override, []byte("[api]\npage_size = 50\n"), 0644))

	config, err := LoadFromFiles(base, override)
	require.NoError(t, err)

	assert.Equal(t, 50, config.API.PageSize)
	assert.Equal(t, 2, config.API.RateLimit)
}

func TestLoadFromFilesMissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("COORDEX_API_PAGE_SIZE", "42")
	t.Setenv("COORDEX_AUTH_SCOPE", "https://www.googleapis.com/auth/other")
	t.Setenv("COORDEX_LOG_LEVEL", "warn")
	t.Setenv("COORDEX_LOG_OUTPUT", "stderr, file")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 42, config.API.PageSize)
	assert.Equal(t, "https://www.googleapis.com/auth/other", config.Auth.Scope)
	assert.Equal(t, "warn", config.Logging.Level)
	assert.Equal(t, []string{"stderr", "file"}, config.Logging.Output)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"page size above API cap", func(c *Config) { c.API.PageSize = 500 }},
		{"zero rate limit", func(c *Config) { c.API.RateLimit = 0 }},
		{"empty base URL", func(c *Config) { c.API.BaseURL = "" }},
		{"empty scope", func(c *Config) { c.Auth.Scope = "" }},
		{"empty client secrets path", func(c *Config) { c.Auth.ClientSecrets = "" }},
		{"zero progress interval", func(c *Config) { c.Export.ProgressInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestRequestTimeout(t *testing.T) {
	tests := []struct {
		timeout string
		want    time.Duration
	}{
		{"", 30 * time.Second},
		{"10s", 10 * time.Second},
		{"2m", 2 * time.Minute},
		{"garbage", 30 * time.Second},
		{"-5s", 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.timeout, func(t *testing.T) {
			api := APIConfig{Timeout: tt.timeout}
			assert.Equal(t, tt.want, api.RequestTimeout())
		})
	}
}
