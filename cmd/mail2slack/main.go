// Package main is the entry point for the mail2slack CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"mail2slack/pkg/addon"
	"mail2slack/pkg/auth"
	"mail2slack/pkg/config"
	"mail2slack/pkg/logger"
	"mail2slack/pkg/slackapi"
	"mail2slack/pkg/state"
	"mail2slack/pkg/version"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "mail2slack",
	Short: "mail2slack - post email messages to Slack channels",
	Long: `mail2slack backs an email client add-on that posts the message being read
to a Slack channel, optionally with a comment. It serves the add-on's HTTP
endpoints and offers the same operations from the command line.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetFullVersion())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(serviceCmd)
	rootCmd.AddCommand(channelsCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// coreModules wires everything except the HTTP server.
func coreModules() fx.Option {
	return fx.Options(
		config.Module,
		fx.Provide(config.ProvideConfigWithPath(configPath)),
		logger.Module,
		state.Module,
		slackapi.Module,
		auth.Module,
		addon.Module,
	)
}

// cliLogLevel keeps one-shot commands quiet unless --verbose is set.
func cliLogLevel(cfg *logger.Config) *logger.Config {
	if verbose {
		cfg.Level = logger.LevelDebug
	} else {
		cfg.Level = logger.LevelWarn
	}
	return cfg
}

// withService starts the core modules, runs fn and stops them again.
func withService(fn func(ctx context.Context, svc *addon.Service, gate *auth.Gate) error) error {
	var (
		svc  *addon.Service
		gate *auth.Gate
	)

	app := fx.New(
		coreModules(),
		fx.Decorate(cliLogLevel),
		fx.Populate(&svc, &gate),
		fx.NopLogger,
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer stopCancel()
		_ = app.Stop(stopCtx)
	}()

	return fn(context.Background(), svc, gate)
}

// explain prints errors the user can act on in plain words.
func explain(err error) error {
	var authErr *auth.AuthorizationRequiredError
	if errors.As(err, &authErr) {
		fmt.Fprintf(os.Stderr, "%s first by opening:\n  %s\n", authErr.ResourceDisplayName, authErr.URL)
	}
	return err
}
