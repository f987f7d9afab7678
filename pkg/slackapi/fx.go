package slackapi

import (
	"go.uber.org/fx"

	"mail2slack/pkg/config"
	"mail2slack/pkg/logger"
)

// Module provides the Slack Web API client.
var Module = fx.Module("slackapi",
	fx.Provide(NewFromConfig),
)

// NewFromConfig builds a Client from the slack section of the config.
func NewFromConfig(log *logger.Logger, cfg *config.Config) *Client {
	return New(log, Options{
		BaseURL:       cfg.Slack.APIBaseURL,
		Timeout:       cfg.Slack.Timeout,
		RatePerMinute: cfg.Slack.RatePerMinute,
		PageSize:      cfg.Slack.PageSize,
		Debug:         cfg.Slack.Debug,
	})
}
