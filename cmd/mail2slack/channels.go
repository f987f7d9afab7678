package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mail2slack/pkg/addon"
	"mail2slack/pkg/auth"
)

var channelsUser string

var channelsCmd = &cobra.Command{
	Use:   "channels [filter]",
	Short: "List Slack channels, optionally filtered",
	Long: `List the public and private channels the user can see. The optional filter
keeps names containing it, ignoring case (the add-on's autocomplete).

Examples:
  mail2slack channels --user alice@example.com
  mail2slack channels dev --user alice@example.com`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := ""
		if len(args) == 1 {
			filter = args[0]
		}

		return withService(func(ctx context.Context, svc *addon.Service, gate *auth.Gate) error {
			names, err := svc.Channels(ctx, channelsUser, filter)
			if err != nil {
				return explain(err)
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		})
	},
}

func init() {
	channelsCmd.Flags().StringVarP(&channelsUser, "user", "u", "", "user whose Slack token is used")
	_ = channelsCmd.MarkFlagRequired("user")
}
