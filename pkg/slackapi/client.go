// Package slackapi is the Slack Web API surface of mail2slack: the channel
// directory (conversations.list), the message sender (chat.postMessage) and
// the auth.test liveness check. Calls go through slack-go with a per-user
// access token.
package slackapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"mail2slack/pkg/logger"
	"mail2slack/pkg/version"
)

// Conversation types listed by the channel directory. DMs are left out because
// messages are posted by channel name.
var conversationTypes = []string{"public_channel", "private_channel"}

// Options configures a Client.
type Options struct {
	// BaseURL is the Web API root, e.g. https://slack.com/api. It is not
	// validated; a blank value yields requests that fail at call time.
	BaseURL string

	// HTTPClient overrides the transport. Nil uses a client with Timeout.
	HTTPClient *http.Client

	// Timeout bounds each request when HTTPClient is nil. Zero means none.
	Timeout time.Duration

	// RatePerMinute throttles outbound calls. Zero means unlimited.
	RatePerMinute int

	// PageSize is sent as conversations.list "limit". Zero omits it.
	PageSize int

	// Debug enables slack-go request logging through the zap logger.
	Debug bool
}

// Client issues Slack Web API calls on behalf of a token holder.
type Client struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	pageSize   int
	debug      bool
}

// New creates a Client.
func New(log *logger.Logger, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RatePerMinute)), 1)
	}

	return &Client{
		log:        log.Named("slackapi"),
		baseURL:    apiURL(opts.BaseURL),
		httpClient: httpClient,
		limiter:    limiter,
		pageSize:   opts.PageSize,
		debug:      opts.Debug,
	}
}

// apiURL normalises the base URL to the trailing-slash form slack-go
// concatenates method names onto.
func apiURL(base string) string {
	return strings.TrimRight(base, "/") + "/"
}

// api returns a slack-go client bound to token.
func (c *Client) api(token string) *slack.Client {
	return slack.New(token,
		slack.OptionAPIURL(c.baseURL),
		slack.OptionHTTPClient(userAgentClient{c.httpClient}),
		slack.OptionDebug(c.debug),
		slack.OptionLog(c.log.StdLogger()),
	)
}

// wait blocks until the limiter admits one call.
func (c *Client) wait(ctx context.Context, method string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &APICallFailedError{Method: method, Err: err}
	}
	return nil
}

// done logs the outcome of a call and classifies its error.
func (c *Client) done(method string, started time.Time, err error) error {
	err = classify(method, err)
	if err != nil {
		c.log.Debug("Slack API call failed",
			zap.String("method", method),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return err
	}
	c.log.Debug("Slack API call",
		zap.String("method", method),
		zap.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// userAgentClient stamps outbound requests with the service user agent.
type userAgentClient struct {
	client *http.Client
}

func (u userAgentClient) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", version.UserAgent())
	return u.client.Do(req)
}
