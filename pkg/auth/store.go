package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/oauth2"

	"mail2slack/pkg/state"
)

const tokenKeyPrefix = "token:"

// TokenStore persists one OAuth token per user in a state.KV.
type TokenStore struct {
	kv state.KV
}

// NewTokenStore creates a token store on top of kv.
func NewTokenStore(kv state.KV) *TokenStore {
	return &TokenStore{kv: kv}
}

func tokenKey(user string) string {
	return tokenKeyPrefix + user
}

// Load returns the stored token for user, or nil when there is none.
func (s *TokenStore) Load(ctx context.Context, user string) (*oauth2.Token, error) {
	raw, ok, err := s.kv.Get(ctx, tokenKey(user))
	if err != nil {
		return nil, fmt.Errorf("loading token for %s: %w", user, err)
	}
	if !ok {
		return nil, nil
	}

	var tok oauth2.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, fmt.Errorf("decoding token for %s: %w", user, err)
	}
	return &tok, nil
}

// Save stores tok for user, replacing any previous token.
func (s *TokenStore) Save(ctx context.Context, user string, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	if err := s.kv.Set(ctx, tokenKey(user), string(data)); err != nil {
		return fmt.Errorf("saving token for %s: %w", user, err)
	}
	return nil
}

// Delete removes the token for user.
func (s *TokenStore) Delete(ctx context.Context, user string) error {
	if err := s.kv.Delete(ctx, tokenKey(user)); err != nil {
		return fmt.Errorf("deleting token for %s: %w", user, err)
	}
	return nil
}

// Users lists the users that currently hold a token, sorted.
func (s *TokenStore) Users(ctx context.Context) ([]string, error) {
	keys, err := s.kv.Keys(ctx, tokenKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing tokens: %w", err)
	}
	users := make([]string, 0, len(keys))
	for _, key := range keys {
		users = append(users, strings.TrimPrefix(key, tokenKeyPrefix))
	}
	sort.Strings(users)
	return users, nil
}
