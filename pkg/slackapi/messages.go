package slackapi

import (
	"context"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// PostMessageResult identifies a posted message.
type PostMessageResult struct {
	Channel   string `json:"channel"`
	Timestamp string `json:"ts"`
}

// AuthTestResult describes the identity behind a token.
type AuthTestResult struct {
	URL    string `json:"url"`
	Team   string `json:"team"`
	User   string `json:"user"`
	TeamID string `json:"team_id"`
	UserID string `json:"user_id"`
}

// Send posts comment as the message text with the email body as its single
// attachment. An empty comment is sent as empty text.
func (c *Client) Send(ctx context.Context, token, channel, emailBody, comment string) (PostMessageResult, error) {
	const method = "chat.postMessage"

	if err := c.wait(ctx, method); err != nil {
		return PostMessageResult{}, err
	}

	started := time.Now()
	ch, ts, err := c.api(token).PostMessageContext(ctx, channel,
		slack.MsgOptionText(comment, false),
		slack.MsgOptionAttachments(slack.Attachment{Text: emailBody}),
	)
	if err = c.done(method, started, err); err != nil {
		return PostMessageResult{}, err
	}

	c.log.Info("Message posted",
		zap.String("channel", ch),
		zap.String("ts", ts),
		zap.Bool("with_comment", comment != ""),
	)
	return PostMessageResult{Channel: ch, Timestamp: ts}, nil
}

// AuthTest checks the token against auth.test.
func (c *Client) AuthTest(ctx context.Context, token string) (AuthTestResult, error) {
	const method = "auth.test"

	if err := c.wait(ctx, method); err != nil {
		return AuthTestResult{}, err
	}

	started := time.Now()
	resp, err := c.api(token).AuthTestContext(ctx)
	if err = c.done(method, started, err); err != nil {
		return AuthTestResult{}, err
	}

	return AuthTestResult{
		URL:    resp.URL,
		Team:   resp.Team,
		User:   resp.User,
		TeamID: resp.TeamID,
		UserID: resp.UserID,
	}, nil
}
