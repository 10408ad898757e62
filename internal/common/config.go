package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	API         APIConfig     `toml:"api"`
	Auth        AuthConfig    `toml:"auth"`
	Export      ExportConfig  `toml:"export"`
	Logging     LoggingConfig `toml:"logging"`
}

// APIConfig controls access to the Coordinate REST API.
type APIConfig struct {
	BaseURL   string `toml:"base_url" validate:"required,url"`
	Timeout   string `toml:"timeout"`                            // e.g. "30s" - HTTP request timeout
	RateLimit int    `toml:"rate_limit" validate:"min=1"`        // Requests per second
	PageSize  int    `toml:"page_size" validate:"min=1,max=100"` // Jobs per listing page (API caps at 100)
}

// AuthConfig locates the OAuth2 client identity and the stored user credential.
type AuthConfig struct {
	Scope           string `toml:"scope" validate:"required"`
	ClientSecrets   string `toml:"client_secrets" validate:"required"`   // Path to client_secrets.json
	CredentialsFile string `toml:"credentials_file" validate:"required"` // Path where the user token is persisted
}

// ExportConfig tunes the export run.
type ExportConfig struct {
	ProgressInterval int `toml:"progress_interval" validate:"min=1"` // Emit a progress tick every N jobs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stderr", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// NewDefaultConfig returns the built-in defaults. Files, environment
// variables, and CLI flags layer on top in that order.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "production",
		API: APIConfig{
			BaseURL:   "https://www.googleapis.com/coordinate/v1",
			Timeout:   "30s",
			RateLimit: 5,
			PageSize:  100,
		},
		Auth: AuthConfig{
			Scope:           "https://www.googleapis.com/auth/coordinate",
			ClientSecrets:   "client_secrets.json",
			CredentialsFile: "user_credentials.json",
		},
		Export: ExportConfig{
			ProgressInterval: 10,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stderr"},
			TimeFormat: "15:04:05",
		},
	}
}

// LoadFromFiles loads configuration from zero or more TOML files with
// priority: defaults -> file1 -> file2 -> ... -> env. Later files override
// earlier ones. The merged result is validated before being returned.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the merged configuration against the struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// RequestTimeout parses the configured HTTP timeout, falling back to 30s when
// unset or malformed.
func (a *APIConfig) RequestTimeout() time.Duration {
	if a.Timeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("COORDEX_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// API configuration
	if baseURL := os.Getenv("COORDEX_API_BASE_URL"); baseURL != "" {
		config.API.BaseURL = baseURL
	}
	if timeout := os.Getenv("COORDEX_API_TIMEOUT"); timeout != "" {
		config.API.Timeout = timeout
	}
	if rateLimit := os.Getenv("COORDEX_API_RATE_LIMIT"); rateLimit != "" {
		if rl, err := strconv.Atoi(rateLimit); err == nil {
			config.API.RateLimit = rl
		}
	}
	if pageSize := os.Getenv("COORDEX_API_PAGE_SIZE"); pageSize != "" {
		if ps, err := strconv.Atoi(pageSize); err == nil {
			config.API.PageSize = ps
		}
	}

	// Auth configuration
	if scope := os.Getenv("COORDEX_AUTH_SCOPE"); scope != "" {
		config.Auth.Scope = scope
	}
	if secrets := os.Getenv("COORDEX_AUTH_CLIENT_SECRETS"); secrets != "" {
		config.Auth.ClientSecrets = secrets
	}
	if credentials := os.Getenv("COORDEX_AUTH_CREDENTIALS_FILE"); credentials != "" {
		config.Auth.CredentialsFile = credentials
	}

	// Logging configuration
	if level := os.Getenv("COORDEX_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("COORDEX_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}
