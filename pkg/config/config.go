// Package config provides configuration management for mail2slack.
// It uses Viper for loading with support for:
// - JSON, YAML and TOML files
// - MAIL2SLACK_* environment variables and the SLACK_* property names
// - a .env file preloaded into the environment
// - default values
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config represents the complete mail2slack configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server" json:"server"`
	Slack  SlackConfig  `mapstructure:"slack" json:"slack"`
	OAuth  OAuthConfig  `mapstructure:"oauth" json:"oauth"`
	State  StateConfig  `mapstructure:"state" json:"state"`
	Redis  RedisConfig  `mapstructure:"redis" json:"redis"`
	Logger LoggerConfig `mapstructure:"logger" json:"logger"`
}

// ServerConfig is the HTTP surface the add-on host talks to.
type ServerConfig struct {
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
	// PublicURL is the externally reachable base URL, used to derive the
	// OAuth redirect URL when oauth.redirect_url is empty.
	PublicURL string `mapstructure:"public_url" json:"public_url"`
	// EventSecret enables HS256 bearer checks on /addon routes when set.
	EventSecret string `mapstructure:"event_secret" json:"event_secret"`
}

// SlackConfig configures outbound Slack Web API calls.
type SlackConfig struct {
	APIBaseURL    string        `mapstructure:"api_base_url" json:"api_base_url"`
	Timeout       time.Duration `mapstructure:"timeout" json:"timeout"`
	RatePerMinute int           `mapstructure:"rate_per_minute" json:"rate_per_minute"`
	PageSize      int           `mapstructure:"page_size" json:"page_size"`
	Debug         bool          `mapstructure:"debug" json:"debug"`
}

// OAuthConfig configures the Slack OAuth2 authorization-code flow.
type OAuthConfig struct {
	AuthorizationURL string        `mapstructure:"authorization_url" json:"authorization_url"`
	TokenURL         string        `mapstructure:"token_url" json:"token_url"`
	ClientID         string        `mapstructure:"client_id" json:"client_id"`
	ClientSecret     string        `mapstructure:"client_secret" json:"client_secret"`
	RedirectURL      string        `mapstructure:"redirect_url" json:"redirect_url"`
	Scopes           []string      `mapstructure:"scopes" json:"scopes"`
	StateSecret      string        `mapstructure:"state_secret" json:"state_secret"`
	StateTTL         time.Duration `mapstructure:"state_ttl" json:"state_ttl"`
}

// StateConfig selects the token store backend.
type StateConfig struct {
	Backend  string `mapstructure:"backend" json:"backend"` // "file" or "redis"
	FilePath string `mapstructure:"file_path" json:"file_path"`
	Prefix   string `mapstructure:"prefix" json:"prefix"`
}

// RedisConfig is shared by the redis state backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" json:"addr"`
	Password string `mapstructure:"password" json:"password"`
	DB       int    `mapstructure:"db" json:"db"`
}

// LoggerConfig mirrors logger.Config in config-file form.
type LoggerConfig struct {
	Level       string `mapstructure:"level" json:"level"`
	OutputPath  string `mapstructure:"output_path" json:"output_path"`
	MaxSize     int    `mapstructure:"max_size" json:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" json:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" json:"max_age"`
	Compress    bool   `mapstructure:"compress" json:"compress"`
	Development bool   `mapstructure:"development" json:"development"`
}

// DefaultScopes are requested when oauth.scopes is empty.
var DefaultScopes = []string{
	"channels:read",
	"groups:read",
	"im:read",
	"mpim:read",
	"chat:write",
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	home, _ := GetConfigHome()

	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 18880,
		},
		Slack: SlackConfig{
			APIBaseURL: "https://slack.com/api",
		},
		OAuth: OAuthConfig{
			AuthorizationURL: "https://slack.com/oauth/authorize",
			TokenURL:         "https://slack.com/api/oauth.access",
			Scopes:           append([]string(nil), DefaultScopes...),
			StateTTL:         10 * time.Minute,
		},
		State: StateConfig{
			Backend:  "file",
			FilePath: filepath.Join(home, "tokens.json"),
			Prefix:   "mail2slack:",
		},
		Logger: LoggerConfig{
			Level:      "info",
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     14,
			Compress:   true,
		},
	}
}

// RedirectURL returns the OAuth redirect URL, derived from the public URL
// when not configured explicitly.
func (c *Config) RedirectURL() string {
	if c.OAuth.RedirectURL != "" {
		return c.OAuth.RedirectURL
	}
	if c.Server.PublicURL == "" {
		return ""
	}
	return trimSlash(c.Server.PublicURL) + CallbackPath
}

// CallbackPath is where the OAuth provider redirects back to.
const CallbackPath = "/oauth/callback"

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
