// Package addon routes add-on UI events to their handlers and runs every
// Slack call behind the authorization gate.
package addon

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"mail2slack/pkg/cards"
	"mail2slack/pkg/logger"
	"mail2slack/pkg/slackapi"
)

var (
	// ErrUnknownAction is returned for an event id with no handler.
	ErrUnknownAction = errors.New("unknown action")

	// ErrMissingUser is returned when a Slack call is requested without a
	// user to act for.
	ErrMissingUser = errors.New("event has no user")
)

// Authorizer hands out per-user access tokens.
type Authorizer interface {
	EnsureAuthorized(ctx context.Context, user string) (string, error)
	Revoke(ctx context.Context, user string) error
	AuthorizationRequired(user string) error
}

// SlackAPI is the subset of the Slack client the handlers use.
type SlackAPI interface {
	ListAllChannels(ctx context.Context, token string) ([]slackapi.Channel, error)
	Send(ctx context.Context, token, channel, emailBody, comment string) (slackapi.PostMessageResult, error)
	AuthTest(ctx context.Context, token string) (slackapi.AuthTestResult, error)
}

// Handler serves one action.
type Handler func(ctx context.Context, ev Event) (cards.Response, error)

// Service holds the dispatch table.
type Service struct {
	log      *logger.Logger
	gate     Authorizer
	slack    SlackAPI
	handlers map[string]Handler
}

// NewService creates a Service with the built-in actions registered.
func NewService(log *logger.Logger, gate Authorizer, slack SlackAPI) *Service {
	s := &Service{
		log:   log.Named("addon"),
		gate:  gate,
		slack: slack,
	}
	s.handlers = map[string]Handler{
		cards.ActionOpen:         s.handleOpen,
		cards.ActionSend:         s.handleSend,
		cards.ActionSendAgain:    s.handleSendAgain,
		cards.ActionAutocomplete: s.handleAutocomplete,
		cards.ActionAuthCheck:    s.handleAuthCheck,
	}
	return s
}

// Actions lists the registered action ids.
func (s *Service) Actions() []string {
	actions := make([]string, 0, len(s.handlers))
	for action := range s.handlers {
		actions = append(actions, action)
	}
	return actions
}

// Dispatch runs the handler registered for ev.Action.
func (s *Service) Dispatch(ctx context.Context, ev Event) (cards.Response, error) {
	handler, ok := s.handlers[ev.Action]
	if !ok {
		return cards.Response{}, fmt.Errorf("%w: %q", ErrUnknownAction, ev.Action)
	}

	s.log.Debug("Dispatching event", zap.String("action", ev.Action), zap.String("user", ev.User))
	return handler(ctx, ev)
}

// call runs fn with user's access token. A Slack auth error drops the token
// and turns into an authorization prompt.
func (s *Service) call(ctx context.Context, user string, fn func(token string) error) error {
	if user == "" {
		return ErrMissingUser
	}

	token, err := s.gate.EnsureAuthorized(ctx, user)
	if err != nil {
		return err
	}

	err = fn(token)
	if err == nil {
		return nil
	}

	if errors.Is(err, slackapi.ErrNotAuthorized) {
		s.log.Warn("Slack rejected token", zap.String("user", user), zap.Error(err))
		if revokeErr := s.gate.Revoke(ctx, user); revokeErr != nil {
			s.log.Error("Failed to revoke token", zap.String("user", user), zap.Error(revokeErr))
		}
		return s.gate.AuthorizationRequired(user)
	}

	var apiErr *slackapi.APICallFailedError
	if errors.As(err, &apiErr) {
		s.log.Error("API call failed",
			zap.String("user", user),
			zap.String("method", apiErr.Method),
			zap.String("code", apiErr.Code),
			zap.Int("status", apiErr.StatusCode),
			zap.Error(err),
		)
	}
	return err
}

// Channels returns the names of user's channels containing prefix.
func (s *Service) Channels(ctx context.Context, user, prefix string) ([]string, error) {
	var names []string
	err := s.call(ctx, user, func(token string) error {
		channels, err := s.slack.ListAllChannels(ctx, token)
		if err != nil {
			return err
		}
		names = slackapi.FilterChannelNames(slackapi.ChannelNames(channels), prefix)
		return nil
	})
	return names, err
}

// Send posts emailBody to input.Channel with input.Comment as the message
// text.
func (s *Service) Send(ctx context.Context, user string, input cards.FormInput, emailBody string) (slackapi.PostMessageResult, error) {
	var result slackapi.PostMessageResult
	err := s.call(ctx, user, func(token string) error {
		var err error
		result, err = s.slack.Send(ctx, token, input.Channel, emailBody, input.Comment)
		return err
	})
	return result, err
}

// Whoami checks user's token with auth.test.
func (s *Service) Whoami(ctx context.Context, user string) (slackapi.AuthTestResult, error) {
	var result slackapi.AuthTestResult
	err := s.call(ctx, user, func(token string) error {
		var err error
		result, err = s.slack.AuthTest(ctx, token)
		return err
	})
	return result, err
}
