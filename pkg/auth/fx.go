package auth

import (
	"net/http"

	"go.uber.org/fx"

	"mail2slack/pkg/config"
	"mail2slack/pkg/logger"
	"mail2slack/pkg/state"
)

// Module provides the authorization gate.
var Module = fx.Module("auth",
	fx.Provide(NewFromConfig),
)

// NewFromConfig builds a Gate from the oauth section of the config.
func NewFromConfig(log *logger.Logger, kv state.KV, cfg *config.Config) *Gate {
	return New(log, kv, Options{
		AuthorizationURL: cfg.OAuth.AuthorizationURL,
		TokenURL:         cfg.OAuth.TokenURL,
		ClientID:         cfg.OAuth.ClientID,
		ClientSecret:     cfg.OAuth.ClientSecret,
		RedirectURL:      cfg.RedirectURL(),
		Scopes:           cfg.OAuth.Scopes,
		StateSecret:      cfg.OAuth.StateSecret,
		StateTTL:         cfg.OAuth.StateTTL,
		HTTPClient:       &http.Client{Timeout: cfg.Slack.Timeout},
	})
}
