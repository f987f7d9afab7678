package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ConfigPathEnv overrides the config file location.
const ConfigPathEnv = "MAIL2SLACK_CONFIG_FILE"

// envPrefix namespaces every config key in the environment,
// e.g. MAIL2SLACK_SERVER_PORT.
const envPrefix = "MAIL2SLACK"

// propertyEnv maps config keys to the script property names the add-on was
// originally configured with. They take precedence over the prefixed form.
var propertyEnv = map[string]string{
	"slack.api_base_url":      "SLACK_API_BASE_URL",
	"oauth.authorization_url": "SLACK_OAUTH_AUTHORIZATION_URL",
	"oauth.token_url":         "SLACK_OAUTH_TOKEN_URL",
	"oauth.client_id":         "SLACK_CLIENT_ID",
	"oauth.client_secret":     "SLACK_CLIENT_SECRET",
}

// Loader handles configuration loading with Viper.
type Loader struct {
	viper *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("json")

	if home, err := GetConfigHome(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{viper: v}
}

// Load reads the configuration from file and environment variables.
// If configPath is empty, MAIL2SLACK_CONFIG_FILE and then the default search
// paths are used. A missing config file is not an error; defaults and the
// environment still apply.
func (l *Loader) Load(configPath string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	setDefaults(l.viper, cfg)
	if err := bindPropertyEnv(l.viper); err != nil {
		return nil, err
	}

	if strings.TrimSpace(configPath) == "" {
		configPath = strings.TrimSpace(os.Getenv(ConfigPathEnv))
	}
	if configPath != "" {
		abs, err := filepath.Abs(expandPath(configPath))
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
		l.viper.SetConfigFile(abs)
	}

	if err := l.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := l.viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if len(cfg.OAuth.Scopes) == 0 {
		cfg.OAuth.Scopes = append([]string(nil), DefaultScopes...)
	}
	cfg.State.FilePath = expandPath(cfg.State.FilePath)
	cfg.Logger.OutputPath = expandPath(cfg.Logger.OutputPath)

	return cfg, nil
}

// GetConfigPath returns the path of the loaded config file.
func (l *Loader) GetConfigPath() string {
	return l.viper.ConfigFileUsed()
}

// GetConfigHome returns the default config directory.
func GetConfigHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".mail2slack"), nil
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal; viper only consults the environment for keys it knows about.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.host", cfg.Server.Host)
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.public_url", cfg.Server.PublicURL)
	v.SetDefault("server.event_secret", cfg.Server.EventSecret)

	v.SetDefault("slack.api_base_url", cfg.Slack.APIBaseURL)
	v.SetDefault("slack.timeout", cfg.Slack.Timeout)
	v.SetDefault("slack.rate_per_minute", cfg.Slack.RatePerMinute)
	v.SetDefault("slack.page_size", cfg.Slack.PageSize)
	v.SetDefault("slack.debug", cfg.Slack.Debug)

	v.SetDefault("oauth.authorization_url", cfg.OAuth.AuthorizationURL)
	v.SetDefault("oauth.token_url", cfg.OAuth.TokenURL)
	v.SetDefault("oauth.client_id", cfg.OAuth.ClientID)
	v.SetDefault("oauth.client_secret", cfg.OAuth.ClientSecret)
	v.SetDefault("oauth.redirect_url", cfg.OAuth.RedirectURL)
	v.SetDefault("oauth.scopes", cfg.OAuth.Scopes)
	v.SetDefault("oauth.state_secret", cfg.OAuth.StateSecret)
	v.SetDefault("oauth.state_ttl", cfg.OAuth.StateTTL)

	v.SetDefault("state.backend", cfg.State.Backend)
	v.SetDefault("state.file_path", cfg.State.FilePath)
	v.SetDefault("state.prefix", cfg.State.Prefix)

	v.SetDefault("redis.addr", cfg.Redis.Addr)
	v.SetDefault("redis.password", cfg.Redis.Password)
	v.SetDefault("redis.db", cfg.Redis.DB)

	v.SetDefault("logger.level", cfg.Logger.Level)
	v.SetDefault("logger.output_path", cfg.Logger.OutputPath)
	v.SetDefault("logger.max_size", cfg.Logger.MaxSize)
	v.SetDefault("logger.max_backups", cfg.Logger.MaxBackups)
	v.SetDefault("logger.max_age", cfg.Logger.MaxAge)
	v.SetDefault("logger.compress", cfg.Logger.Compress)
	v.SetDefault("logger.development", cfg.Logger.Development)
}

func bindPropertyEnv(v *viper.Viper) error {
	for key, property := range propertyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, property, prefixed); err != nil {
			return fmt.Errorf("binding %s: %w", property, err)
		}
	}
	return nil
}

// loadDotEnv preloads ./.env without overriding variables that are already set.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}
