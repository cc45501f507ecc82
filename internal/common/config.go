package common

import (
	"fmt"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// StageDev is the deployment stage that enables development-only behavior
// (session id in response bodies, logout-by-id endpoint, insecure cookies).
const StageDev = "dev"

// Config holds all configuration for the checklisten-server.
type Config struct {
	Stage   string        `toml:"stage"`
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Auth    AuthConfig    `toml:"auth"`
	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds path configuration for the 2 storage areas.
type StorageConfig struct {
	Checklists AreaConfig `toml:"checklists"`
	Sessions   AreaConfig `toml:"sessions"`
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// AuthConfig holds the security filter, token exchange, and session settings.
type AuthConfig struct {
	TargetOrigin                string `toml:"target_origin"`
	BlockOnMissingOriginReferer bool   `toml:"block_on_missing_origin_referer"`
	ClientID                    string `toml:"client_id"`
	ClientSecret                string `toml:"client_secret"`
	ProviderURL                 string `toml:"provider_url"`
	AuthAppURL                  string `toml:"auth_app_url"`
	LoginRedirectURL            string `toml:"login_redirect_url"`
	SignupRedirectURL           string `toml:"signup_redirect_url"`
	CookiePrefix                string `toml:"cookie_prefix"`
	JWTSecret                   string `toml:"jwt_secret"`
	TokenExpiry                 string `toml:"token_expiry"`     // duration string, default "8h"
	ExchangeTimeout             string `toml:"exchange_timeout"` // duration string, default "10s"
	ExchangeRateLimit           int    `toml:"exchange_rate_limit"`
}

// GetTokenExpiry parses and returns the session/token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 8 * time.Hour
	}
	return d
}

// GetExchangeTimeout parses and returns the outbound exchange timeout.
func (c *AuthConfig) GetExchangeTimeout() time.Duration {
	d, err := time.ParseDuration(c.ExchangeTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// SessionCookieName returns the session cookie name composed of the
// client-specific prefix and the fixed suffix.
func (c *AuthConfig) SessionCookieName() string {
	return c.CookiePrefix + "_SESSIONID"
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Stage: StageDev,
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 9300,
		},
		Storage: StorageConfig{
			Checklists: AreaConfig{Path: "data/checklists"},
			Sessions:   AreaConfig{Path: "data/sessions"},
		},
		Auth: AuthConfig{
			TargetOrigin:                "http://localhost:4200",
			BlockOnMissingOriginReferer: false,
			ProviderURL:                 "http://localhost:9000/authprovider",
			AuthAppURL:                  "http://localhost:4200/auth-app",
			LoginRedirectURL:            "http://localhost:4200/listen",
			SignupRedirectURL:           "http://localhost:4200/listen",
			CookiePrefix:                "CHL",
			JWTSecret:                   "dev-jwt-secret-change-in-production",
			TokenExpiry:                 "8h",
			ExchangeTimeout:             "10s",
			ExchangeRateLimit:           5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if stage := os.Getenv("CHECKLISTEN_STAGE"); stage != "" {
		config.Stage = stage
	}

	if host := os.Getenv("CHECKLISTEN_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("CHECKLISTEN_PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("CHECKLISTEN_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("CHECKLISTEN_TARGET_ORIGIN"); v != "" {
		config.Auth.TargetOrigin = v
	}
	if v := os.Getenv("CHECKLISTEN_AUTH_CLIENT_ID"); v != "" {
		config.Auth.ClientID = v
	}
	if v := os.Getenv("CHECKLISTEN_AUTH_CLIENT_SECRET"); v != "" {
		config.Auth.ClientSecret = v
	}
	if v := os.Getenv("CHECKLISTEN_AUTH_PROVIDER_URL"); v != "" {
		config.Auth.ProviderURL = v
	}
	if v := os.Getenv("CHECKLISTEN_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
}

// IsDevelopment reports whether the configured stage is the dev stage.
func (c *Config) IsDevelopment() bool {
	return strings.TrimSpace(c.Stage) == StageDev
}
