package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"mail2slack/pkg/config"
	"mail2slack/pkg/logger"
	"mail2slack/pkg/server"
	"mail2slack/pkg/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the add-on HTTP endpoints",
	Long: `Serve the add-on in the foreground.

Endpoints:
  POST /addon/events    UI events from the add-on host
  GET  /oauth/callback  Slack OAuth redirect
  GET  /health          liveness

Examples:
  mail2slack serve
  mail2slack -c ./config.json serve`,
	Run: func(cmd *cobra.Command, args []string) {
		newServerApp().Run()
	},
}

// newServerApp builds the long-running application.
func newServerApp(opts ...fx.Option) *fx.App {
	options := []fx.Option{
		coreModules(),
		server.Module,
		fx.Invoke(func(lc fx.Lifecycle, log *logger.Logger, cfg *config.Config) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					log.Info("mail2slack started",
						zap.String("version", version.GetVersion()),
						zap.String("host", cfg.Server.Host),
						zap.Int("port", cfg.Server.Port),
						zap.String("redirect_url", cfg.RedirectURL()),
						zap.String("state_backend", cfg.State.Backend),
					)
					if cfg.RedirectURL() == "" {
						log.Warn("No OAuth redirect URL; set server.public_url or oauth.redirect_url")
					}
					return nil
				},
			})
		}),
	}
	if verbose {
		options = append(options, fx.Decorate(cliLogLevel))
	}
	return fx.New(append(options, opts...)...)
}
