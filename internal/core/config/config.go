// Package config handles configuration loading and validation for gymdesk.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/javiercm/gymdesk/internal/core/styles"
)

// Auth scheme prefixes understood by backends. Djoser-style backends
// expect "JWT", simplejwt defaults to "Bearer". The two are not
// interchangeable; the backend rejects the wrong prefix with a 401.
const (
	SchemeBearer = "Bearer"
	SchemeJWT    = "JWT"
)

// Config holds the application configuration.
type Config struct {
	BaseURL    string        `yaml:"base_url"`    // backend root, e.g. http://localhost:8000
	APIPrefix  string        `yaml:"api_prefix"`  // resource prefix under the root
	AuthScheme string        `yaml:"auth_scheme"` // Authorization prefix: Bearer or JWT
	Timeout    time.Duration `yaml:"timeout"`     // per-request HTTP timeout
	TUI        TUIConfig     `yaml:"tui"`
	DataDir    string        `yaml:"-"` // set by caller, not from config file
}

// TUIConfig holds TUI-related configuration.
type TUIConfig struct {
	Theme string `yaml:"theme"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:    "http://localhost:8000",
		APIPrefix:  "/api/v1",
		AuthScheme: SchemeJWT,
		Timeout:    10 * time.Second,
		TUI: TUIConfig{
			Theme: "tokyo-night",
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.APIPrefix == "" {
		c.APIPrefix = def.APIPrefix
	}
	if c.AuthScheme == "" {
		c.AuthScheme = def.AuthScheme
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = def.TUI.Theme
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base_url must start with http:// or https://, got %q", c.BaseURL)
	}

	if c.AuthScheme != SchemeBearer && c.AuthScheme != SchemeJWT {
		return fmt.Errorf("auth_scheme must be %q or %q, got %q", SchemeBearer, SchemeJWT, c.AuthScheme)
	}

	if !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("api_prefix must start with /, got %q", c.APIPrefix)
	}

	if _, ok := styles.GetPalette(c.TUI.Theme); !ok {
		return fmt.Errorf("unknown tui theme %q (available: %s)",
			c.TUI.Theme, strings.Join(styles.ThemeNames(), ", "))
	}

	return nil
}
