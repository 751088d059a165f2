package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_missing_file_returns_defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "/data")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.BaseURL)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, SchemeJWT, cfg.AuthScheme)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "/data", cfg.DataDir)
}

func TestLoad_reads_yaml_and_applies_defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
base_url: https://gym.example.com
auth_scheme: Bearer
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, "/data")
	require.NoError(t, err)

	assert.Equal(t, "https://gym.example.com", cfg.BaseURL)
	assert.Equal(t, SchemeBearer, cfg.AuthScheme)
	// Unset keys fall back to defaults.
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "tokyo-night", cfg.TUI.Theme)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad base url",
			mutate:  func(c *Config) { c.BaseURL = "gym.example.com" },
			wantErr: "base_url",
		},
		{
			name:    "bad auth scheme",
			mutate:  func(c *Config) { c.AuthScheme = "Token" },
			wantErr: "auth_scheme",
		},
		{
			name:    "bad api prefix",
			mutate:  func(c *Config) { c.APIPrefix = "api/v1" },
			wantErr: "api_prefix",
		},
		{
			name:    "unknown theme",
			mutate:  func(c *Config) { c.TUI.Theme = "solarized" },
			wantErr: "theme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
