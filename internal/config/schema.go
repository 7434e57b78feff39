// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for tutor.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Config is the top-level configuration structure.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Store     StoreConfig     `yaml:"store"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Session   SessionConfig   `yaml:"session"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// CatalogConfig points at the card catalog service.
type CatalogConfig struct {
	BaseURL string `yaml:"base_url"`
}

// StoreConfig locates the workspace database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// GatewayConfig configures the HTTP gateway.
type GatewayConfig struct {
	// Listen is the address the gateway binds, e.g. ":8080". Empty
	// disables the gateway.
	Listen string      `yaml:"listen"`
	OAuth  OAuthConfig `yaml:"oauth"`
}

// OAuthConfig holds the Slack OAuth application credentials used by the
// /auth handshake endpoint.
type OAuthConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// IsConfigured reports whether the handshake endpoint can be mounted.
func (o OAuthConfig) IsConfigured() bool {
	return o.ClientID != "" && o.ClientSecret != ""
}

// AnalyticsConfig configures usage event recording. An empty tracking id
// disables it.
type AnalyticsConfig struct {
	TrackingID string `yaml:"tracking_id"`
	Endpoint   string `yaml:"endpoint"`
}

// SessionConfig controls the workspace session manager.
type SessionConfig struct {
	// RefreshSchedule is a cron expression for re-reading the workspace
	// store and starting sessions for newly authorized workspaces.
	// Empty disables the refresh job.
	RefreshSchedule string `yaml:"refresh_schedule"`
}

// defaults applies default values to unset fields.
func (c *Config) defaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Store.Path == "" {
		c.Store.Path = "tutor.sqlite"
	}
	if c.Session.RefreshSchedule == "" {
		c.Session.RefreshSchedule = "@every 1m"
	}
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks field constraints after defaults have been applied.
func Validate(cfg *Config) error {
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid log level %q", cfg.Log.Level)
	}

	if cfg.Catalog.BaseURL != "" {
		u, err := url.Parse(cfg.Catalog.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("config: catalog.base_url must be a valid http/https URL, got %q", cfg.Catalog.BaseURL)
		}
	}

	if cfg.Gateway.Listen != "" && cfg.Gateway.OAuth.IsConfigured() && cfg.Gateway.OAuth.RedirectURL == "" {
		return fmt.Errorf("config: gateway.oauth.redirect_url is required when oauth credentials are set")
	}

	return nil
}
