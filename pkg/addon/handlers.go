package addon

import (
	"context"

	"go.uber.org/zap"

	"mail2slack/pkg/cards"
)

func (s *Service) handleOpen(ctx context.Context, ev Event) (cards.Response, error) {
	return cards.DisplayCards(cards.FormCard()), nil
}

func (s *Service) handleSend(ctx context.Context, ev Event) (cards.Response, error) {
	result, err := s.Send(ctx, ev.User, ev.FormInput, ev.Message.Text())
	if err != nil {
		return cards.Response{}, err
	}

	s.log.Info("Email sent to Slack",
		zap.String("user", ev.User),
		zap.String("channel", result.Channel),
		zap.String("message_id", ev.Message.ID),
	)
	return cards.PopToRootAndPush(cards.SentCard(ev.FormInput)), nil
}

func (s *Service) handleSendAgain(ctx context.Context, ev Event) (cards.Response, error) {
	return cards.PopToRootAndPush(cards.FormCard()), nil
}

func (s *Service) handleAutocomplete(ctx context.Context, ev Event) (cards.Response, error) {
	names, err := s.Channels(ctx, ev.User, ev.FormInput.Channel)
	if err != nil {
		return cards.Response{}, err
	}
	return cards.Suggestions(names), nil
}

func (s *Service) handleAuthCheck(ctx context.Context, ev Event) (cards.Response, error) {
	if _, err := s.Whoami(ctx, ev.User); err != nil {
		return cards.Response{}, err
	}
	return cards.Response{}, nil
}
