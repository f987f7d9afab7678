package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mail2slack/pkg/addon"
	"mail2slack/pkg/auth"
	"mail2slack/pkg/cards"
)

var (
	sendUser    string
	sendChannel string
	sendComment string
	sendFile    string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Post an email message to a Slack channel",
	Long: `Post an email to a Slack channel. The message is read from --file (an .eml
file, or "-" for stdin); its text part becomes the attachment and --comment
the message text.

Examples:
  mail2slack send -u alice@example.com --channel general --file note.eml
  cat note.eml | mail2slack send -u alice@example.com --channel general --comment "FYI" --file -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := readEmail(sendFile, cmd.InOrStdin())
		if err != nil {
			return err
		}

		return withService(func(ctx context.Context, svc *addon.Service, gate *auth.Gate) error {
			input := cards.FormInput{Channel: sendChannel, Comment: sendComment}
			result, err := svc.Send(ctx, sendUser, input, body)
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Posted to %s (ts %s)\n", result.Channel, result.Timestamp)
			return nil
		})
	},
}

// readEmail loads an RFC 5322 message and returns its text body.
func readEmail(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	switch path {
	case "":
		return "", nil
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading email: %w", err)
	}
	return addon.Message{Raw: string(data)}.Text(), nil
}

func init() {
	sendCmd.Flags().StringVarP(&sendUser, "user", "u", "", "user whose Slack token is used")
	sendCmd.Flags().StringVar(&sendChannel, "channel", "", "channel name or id")
	sendCmd.Flags().StringVar(&sendComment, "comment", "", "message text posted with the email")
	sendCmd.Flags().StringVarP(&sendFile, "file", "f", "", `email file, "-" for stdin`)
	_ = sendCmd.MarkFlagRequired("user")
	_ = sendCmd.MarkFlagRequired("channel")
}
