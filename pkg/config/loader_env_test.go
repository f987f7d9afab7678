package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")
	path := filepath.Join(t.TempDir(), "absent.json")

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, 18880, cfg.Server.Port)
	assert.Equal(t, "https://slack.com/api", cfg.Slack.APIBaseURL)
	assert.Equal(t, DefaultScopes, cfg.OAuth.Scopes)
	assert.Equal(t, 10*time.Minute, cfg.OAuth.StateTTL)
	assert.Equal(t, "file", cfg.State.Backend)
}

func TestLoad_ReadsFile(t *testing.T) {
	path := writeConfig(t, `{
  "server": {"port": 29999, "public_url": "https://addon.example.com/"},
  "slack": {"api_base_url": "https://slack.test/api", "timeout": "15s", "page_size": 200},
  "oauth": {"client_id": "cid", "scopes": ["channels:read"]},
  "state": {"backend": "redis", "prefix": "x:"},
  "redis": {"addr": "127.0.0.1:6379"}
}`)

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, 29999, cfg.Server.Port)
	assert.Equal(t, "https://slack.test/api", cfg.Slack.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.Slack.Timeout)
	assert.Equal(t, 200, cfg.Slack.PageSize)
	assert.Equal(t, "cid", cfg.OAuth.ClientID)
	assert.Equal(t, []string{"channels:read"}, cfg.OAuth.Scopes)
	assert.Equal(t, "redis", cfg.State.Backend)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	assert.Equal(t, "https://addon.example.com/oauth/callback", cfg.RedirectURL())
}

func TestLoad_UsesConfigPathEnvWhenPathEmpty(t *testing.T) {
	path := writeConfig(t, `{"server": {"port": 23456}}`)
	t.Setenv(ConfigPathEnv, path)

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, 23456, cfg.Server.Port)
}

func TestLoad_PropertyEnvNamesOverrideFile(t *testing.T) {
	path := writeConfig(t, `{"slack": {"api_base_url": "https://from-file/api"}, "oauth": {"client_id": "file-id"}}`)
	t.Setenv("SLACK_API_BASE_URL", "https://from-env/api")
	t.Setenv("SLACK_CLIENT_ID", "env-id")
	t.Setenv("SLACK_CLIENT_SECRET", "env-secret")

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://from-env/api", cfg.Slack.APIBaseURL)
	assert.Equal(t, "env-id", cfg.OAuth.ClientID)
	assert.Equal(t, "env-secret", cfg.OAuth.ClientSecret)
}

func TestLoad_PrefixedEnv(t *testing.T) {
	path := writeConfig(t, `{}`)
	t.Setenv("MAIL2SLACK_SERVER_PORT", "31000")
	t.Setenv("MAIL2SLACK_STATE_BACKEND", "redis")

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, 31000, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.State.Backend)
}

func TestRedirectURL_ExplicitWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.PublicURL = "https://ignored.example.com"
	cfg.OAuth.RedirectURL = "https://explicit.example.com/cb"
	assert.Equal(t, "https://explicit.example.com/cb", cfg.RedirectURL())

	cfg.OAuth.RedirectURL = ""
	cfg.Server.PublicURL = ""
	assert.Empty(t, cfg.RedirectURL())
}
