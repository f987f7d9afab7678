// Package auth implements the Slack OAuth2 authorization-code flow: it
// issues authorization URLs, completes the callback, and hands out the
// stored per-user access token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"mail2slack/pkg/logger"
	"mail2slack/pkg/state"
)

const defaultStateTTL = 10 * time.Minute

// Options configures a Gate.
type Options struct {
	AuthorizationURL string
	TokenURL         string
	ClientID         string
	ClientSecret     string
	RedirectURL      string
	Scopes           []string

	// StateSecret signs the OAuth state. Empty means a generated secret kept
	// in the KV, shared by every process using the same store.
	StateSecret string
	StateTTL    time.Duration

	// HTTPClient is used for token exchange and refresh. Nil uses the
	// oauth2 default.
	HTTPClient *http.Client
}

// Gate guards Slack calls behind a per-user OAuth token.
type Gate struct {
	log         *logger.Logger
	oauth       *oauth2.Config
	tokens      *TokenStore
	stateSecret []byte
	stateTTL    time.Duration
	httpClient  *http.Client
}

// New creates a Gate that keeps tokens in kv.
func New(log *logger.Logger, kv state.KV, opts Options) *Gate {
	log = log.Named("auth")

	secret := opts.StateSecret
	if secret == "" {
		shared, err := sharedStateSecret(context.Background(), kv)
		if err != nil {
			shared = ephemeralSecret()
			log.Warn("oauth.state_secret is not set and the state store is unavailable, using an ephemeral secret",
				zap.Error(err))
		}
		secret = shared
	}

	ttl := opts.StateTTL
	if ttl <= 0 {
		ttl = defaultStateTTL
	}

	return &Gate{
		log: log,
		oauth: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURL,
			Scopes:       opts.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   opts.AuthorizationURL,
				TokenURL:  opts.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		tokens:      NewTokenStore(kv),
		stateSecret: []byte(secret),
		stateTTL:    ttl,
		httpClient:  opts.HTTPClient,
	}
}

// Tokens exposes the underlying token store.
func (g *Gate) Tokens() *TokenStore {
	return g.tokens
}

// HasAccess reports whether user holds a token that is valid or can be
// refreshed.
func (g *Gate) HasAccess(ctx context.Context, user string) (bool, error) {
	tok, err := g.tokens.Load(ctx, user)
	if err != nil {
		return false, err
	}
	return usable(tok), nil
}

func usable(tok *oauth2.Token) bool {
	return tok != nil && (tok.Valid() || tok.RefreshToken != "")
}

// AuthorizationURL returns the provider URL that starts authorization for
// user.
func (g *Gate) AuthorizationURL(user string) (string, error) {
	st, err := g.signState(user)
	if err != nil {
		return "", err
	}
	return g.oauth.AuthCodeURL(st), nil
}

// AuthorizationRequired builds the error that sends user through
// authorization.
func (g *Gate) AuthorizationRequired(user string) error {
	authURL, err := g.AuthorizationURL(user)
	if err != nil {
		return err
	}
	return &AuthorizationRequiredError{URL: authURL, ResourceDisplayName: ResourceDisplayName}
}

// EnsureAuthorized returns the access token for user, refreshing it when it
// has expired. Without usable access it returns *AuthorizationRequiredError.
func (g *Gate) EnsureAuthorized(ctx context.Context, user string) (string, error) {
	tok, err := g.tokens.Load(ctx, user)
	if err != nil {
		return "", err
	}
	if !usable(tok) {
		return "", g.AuthorizationRequired(user)
	}
	if tok.Valid() {
		return tok.AccessToken, nil
	}

	fresh, err := g.oauth.TokenSource(g.clientContext(ctx), tok).Token()
	if err != nil {
		g.log.Warn("Token refresh failed", zap.String("user", user), zap.Error(err))
		return "", g.AuthorizationRequired(user)
	}
	if err := g.tokens.Save(ctx, user, fresh); err != nil {
		return "", err
	}
	g.log.Info("Token refreshed", zap.String("user", user))
	return fresh.AccessToken, nil
}

// Revoke forgets the token for user.
func (g *Gate) Revoke(ctx context.Context, user string) error {
	if err := g.tokens.Delete(ctx, user); err != nil {
		return err
	}
	g.log.Info("Token revoked", zap.String("user", user))
	return nil
}

// Complete verifies the callback parameters, exchanges the code and stores
// the token. It returns the user the token was stored for.
func (g *Gate) Complete(ctx context.Context, params url.Values) (string, error) {
	if reason := params.Get("error"); reason != "" {
		return "", fmt.Errorf("authorization denied: %s", reason)
	}

	user, err := g.parseState(params.Get("state"))
	if err != nil {
		return "", err
	}

	code := params.Get("code")
	if code == "" {
		return "", errors.New("no authorization code received")
	}

	tok, err := g.oauth.Exchange(g.clientContext(ctx), code)
	if err != nil {
		return "", fmt.Errorf("exchanging code for token: %w", err)
	}
	if err := g.tokens.Save(ctx, user, tok); err != nil {
		return "", err
	}
	return user, nil
}

// CompleteCallback runs Complete and returns the text shown on the callback
// page.
func (g *Gate) CompleteCallback(ctx context.Context, params url.Values) string {
	user, err := g.Complete(ctx, params)
	if err != nil {
		g.log.Warn("OAuth callback denied", zap.Error(err))
		return CallbackDenied
	}
	g.log.Info("OAuth callback authorized", zap.String("user", user))
	return CallbackSuccess
}

func (g *Gate) clientContext(ctx context.Context) context.Context {
	if g.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
}
