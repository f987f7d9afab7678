package slackapi

import (
	"context"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// Channel is one conversation as listed by conversations.list.
type Channel struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// ConversationsPage is the result of a single conversations.list call.
type ConversationsPage struct {
	Channels   []Channel
	NextCursor string
}

// ListConversations fetches one page of non-archived public and private
// channels. An empty cursor requests the first page.
func (c *Client) ListConversations(ctx context.Context, token, cursor string) (ConversationsPage, error) {
	const method = "conversations.list"

	if err := c.wait(ctx, method); err != nil {
		return ConversationsPage{}, err
	}

	params := &slack.GetConversationsParameters{
		Cursor:          cursor,
		ExcludeArchived: true,
		Types:           conversationTypes,
		Limit:           c.pageSize,
	}

	started := time.Now()
	conversations, next, err := c.api(token).GetConversationsContext(ctx, params)
	if err = c.done(method, started, err); err != nil {
		return ConversationsPage{}, err
	}

	page := ConversationsPage{
		Channels:   make([]Channel, 0, len(conversations)),
		NextCursor: next,
	}
	for _, conv := range conversations {
		page.Channels = append(page.Channels, Channel{Name: conv.Name, ID: conv.ID})
	}
	return page, nil
}

// ListAllChannels follows next_cursor until it comes back empty and returns
// every channel in response order. The first failing page aborts the walk.
func (c *Client) ListAllChannels(ctx context.Context, token string) ([]Channel, error) {
	var (
		channels []Channel
		cursor   string
		pages    int
	)
	for {
		page, err := c.ListConversations(ctx, token, cursor)
		if err != nil {
			return nil, err
		}
		pages++
		channels = append(channels, page.Channels...)
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	c.log.Debug("Listed channels", zap.Int("pages", pages), zap.Int("channels", len(channels)))
	return channels, nil
}

// ChannelNames projects channels onto their names, keeping order and
// duplicates.
func ChannelNames(channels []Channel) []string {
	names := make([]string, 0, len(channels))
	for _, ch := range channels {
		names = append(names, ch.Name)
	}
	return names
}

// FilterChannelNames returns, in input order, the non-empty names that
// contain prefix case-insensitively. Despite the parameter name the match is
// a substring match.
func FilterChannelNames(names []string, prefix string) []string {
	needle := strings.ToLower(prefix)
	matched := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if strings.Contains(strings.ToLower(name), needle) {
			matched = append(matched, name)
		}
	}
	return matched
}
