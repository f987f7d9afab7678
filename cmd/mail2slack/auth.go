package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mail2slack/pkg/addon"
	"mail2slack/pkg/auth"
)

var (
	authUser string
	authOpen bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Slack authorization",
	Long:  `Manage the per-user Slack OAuth tokens.`,
}

var authURLCmd = &cobra.Command{
	Use:   "url",
	Short: "Print the Slack authorization URL for a user",
	Long: `Print the URL that starts Slack authorization for a user. Slack redirects
back to the running server's /oauth/callback, which stores the token.

Examples:
  mail2slack auth url --user alice@example.com
  mail2slack auth url --user alice@example.com --open`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *addon.Service, gate *auth.Gate) error {
			authURL, err := gate.AuthorizationURL(authUser)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), authURL)
			if authOpen {
				if err := auth.OpenBrowser(authURL); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser automatically: %v\n", err)
				}
			}
			return nil
		})
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which users hold a token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *addon.Service, gate *auth.Gate) error {
			if authUser != "" {
				result, err := svc.Whoami(ctx, authUser)
				if err != nil {
					return explain(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s on %s (%s)\n", authUser, result.User, result.Team, result.URL)
				return nil
			}

			users, err := gate.Tokens().Users(ctx)
			if err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No authorized users.")
				return nil
			}
			for _, user := range users {
				fmt.Fprintln(cmd.OutOrStdout(), user)
			}
			return nil
		})
	},
}

var authRevokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Forget a user's Slack token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *addon.Service, gate *auth.Gate) error {
			if err := gate.Revoke(ctx, authUser); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token for %s removed.\n", authUser)
			return nil
		})
	},
}

func init() {
	authURLCmd.Flags().StringVarP(&authUser, "user", "u", "", "user to authorize")
	authURLCmd.Flags().BoolVar(&authOpen, "open", false, "open the URL in a browser")
	_ = authURLCmd.MarkFlagRequired("user")

	authStatusCmd.Flags().StringVarP(&authUser, "user", "u", "", "check this user's token with auth.test")

	authRevokeCmd.Flags().StringVarP(&authUser, "user", "u", "", "user whose token is removed")
	_ = authRevokeCmd.MarkFlagRequired("user")

	authCmd.AddCommand(authURLCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authRevokeCmd)
}
