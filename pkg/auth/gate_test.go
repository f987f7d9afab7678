package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"mail2slack/pkg/logger"
	"mail2slack/pkg/state"
)

type tokenServer struct {
	mu       sync.Mutex
	requests []url.Values
	respond  func(w http.ResponseWriter, form url.Values)
}

func newTokenServer(t *testing.T, respond func(w http.ResponseWriter, form url.Values)) (*tokenServer, *httptest.Server) {
	t.Helper()
	ts := &tokenServer{respond: respond}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		ts.mu.Lock()
		ts.requests = append(ts.requests, r.PostForm)
		ts.mu.Unlock()
		ts.respond(w, r.PostForm)
	}))
	t.Cleanup(srv.Close)
	return ts, srv
}

func (ts *tokenServer) recorded() []url.Values {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]url.Values(nil), ts.requests...)
}

func writeToken(w http.ResponseWriter, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func newTestGate(t *testing.T, tokenURL string) *Gate {
	t.Helper()
	kv, err := state.NewFileStore(logger.NewNop(), filepath.Join(t.TempDir(), "tokens.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	return New(logger.NewNop(), kv, Options{
		AuthorizationURL: "https://slack.example/oauth/authorize",
		TokenURL:         tokenURL,
		ClientID:         "client-1",
		ClientSecret:     "secret-1",
		RedirectURL:      "https://addon.example/oauth/callback",
		Scopes:           []string{"channels:read", "chat:write"},
		StateSecret:      "state-secret",
	})
}

func stateFromURL(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Query().Get("state")
}

func TestEnsureAuthorizedWithoutToken(t *testing.T) {
	g := newTestGate(t, "http://unused.invalid")
	ctx := context.Background()

	ok, err := g.HasAccess(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = g.EnsureAuthorized(ctx, "alice@example.com")
	require.Error(t, err)
	assert.True(t, IsAuthorizationRequired(err))

	var authErr *AuthorizationRequiredError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Connect to Slack", authErr.ResourceDisplayName)

	u, err := url.Parse(authErr.URL)
	require.NoError(t, err)
	assert.Equal(t, "slack.example", u.Host)
	assert.Equal(t, "client-1", u.Query().Get("client_id"))
	assert.Equal(t, "https://addon.example/oauth/callback", u.Query().Get("redirect_uri"))
	assert.Equal(t, "channels:read chat:write", u.Query().Get("scope"))
	assert.NotEmpty(t, u.Query().Get("state"))
}

func TestCallbackRoundTrip(t *testing.T) {
	ts, srv := newTokenServer(t, func(w http.ResponseWriter, form url.Values) {
		writeToken(w, map[string]any{"ok": true, "access_token": "xoxp-abc", "scope": "channels:read,chat:write"})
	})
	g := newTestGate(t, srv.URL)
	ctx := context.Background()

	authURL, err := g.AuthorizationURL("alice@example.com")
	require.NoError(t, err)

	text := g.CompleteCallback(ctx, url.Values{
		"state": {stateFromURL(t, authURL)},
		"code":  {"code-123"},
	})
	assert.Equal(t, "Success! You can close this tab.", text)

	requests := ts.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, "code-123", requests[0].Get("code"))
	assert.Equal(t, "client-1", requests[0].Get("client_id"))
	assert.Equal(t, "secret-1", requests[0].Get("client_secret"))

	ok, err := g.HasAccess(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	token, err := g.EnsureAuthorized(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "xoxp-abc", token)

	users, err := g.Tokens().Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice@example.com"}, users)

	require.NoError(t, g.Revoke(ctx, "alice@example.com"))
	ok, err = g.HasAccess(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCallbackDenied(t *testing.T) {
	ts, srv := newTokenServer(t, func(w http.ResponseWriter, form url.Values) {
		if form.Get("code") == "bad" {
			writeToken(w, map[string]any{"ok": false, "error": "invalid_code"})
			return
		}
		writeToken(w, map[string]any{"ok": true, "access_token": "xoxp-abc"})
	})
	g := newTestGate(t, srv.URL)
	ctx := context.Background()

	authURL, err := g.AuthorizationURL("alice@example.com")
	require.NoError(t, err)
	validState := stateFromURL(t, authURL)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	expiredState, err := expired.SignedString(g.stateSecret)
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	})
	foreignState, err := foreign.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		params url.Values
	}{
		{name: "user denied", params: url.Values{"error": {"access_denied"}, "state": {validState}}},
		{name: "missing state", params: url.Values{"code": {"code-123"}}},
		{name: "tampered state", params: url.Values{"state": {validState + "x"}, "code": {"code-123"}}},
		{name: "expired state", params: url.Values{"state": {expiredState}, "code": {"code-123"}}},
		{name: "foreign secret", params: url.Values{"state": {foreignState}, "code": {"code-123"}}},
		{name: "missing code", params: url.Values{"state": {validState}}},
		{name: "exchange rejected", params: url.Values{"state": {validState}, "code": {"bad"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "Denied. You can close this tab.", g.CompleteCallback(ctx, tt.params))

			ok, err := g.HasAccess(ctx, "alice@example.com")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}

	for _, form := range ts.recorded() {
		assert.Equal(t, "bad", form.Get("code"), "only the rejected exchange should reach the token endpoint")
	}
}

func TestEnsureAuthorizedRefreshesExpiredToken(t *testing.T) {
	ts, srv := newTokenServer(t, func(w http.ResponseWriter, form url.Values) {
		writeToken(w, map[string]any{"access_token": "xoxp-new", "token_type": "bearer", "expires_in": 3600})
	})
	g := newTestGate(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, g.Tokens().Save(ctx, "bob", &oauth2.Token{
		AccessToken:  "xoxp-old",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(-time.Hour),
	}))

	ok, err := g.HasAccess(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, ok)

	token, err := g.EnsureAuthorized(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "xoxp-new", token)

	requests := ts.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, "refresh_token", requests[0].Get("grant_type"))
	assert.Equal(t, "refresh-1", requests[0].Get("refresh_token"))

	stored, err := g.Tokens().Load(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "xoxp-new", stored.AccessToken)
	assert.Equal(t, "refresh-1", stored.RefreshToken)
}

func TestEnsureAuthorizedExpiredWithoutRefresh(t *testing.T) {
	g := newTestGate(t, "http://unused.invalid")
	ctx := context.Background()

	require.NoError(t, g.Tokens().Save(ctx, "carol", &oauth2.Token{
		AccessToken: "xoxp-old",
		Expiry:      time.Now().Add(-time.Hour),
	}))

	_, err := g.EnsureAuthorized(ctx, "carol")
	assert.True(t, IsAuthorizationRequired(err))
}

func TestGeneratedStateSecretIsShared(t *testing.T) {
	_, srv := newTokenServer(t, func(w http.ResponseWriter, form url.Values) {
		writeToken(w, map[string]any{"ok": true, "access_token": "xoxp-cli"})
	})
	ctx := context.Background()
	opts := Options{AuthorizationURL: "https://slack.example/oauth/authorize", TokenURL: srv.URL}

	statePath := filepath.Join(t.TempDir(), "tokens.json")
	cliKV, err := state.NewFileStore(logger.NewNop(), statePath)
	require.NoError(t, err)
	serverKV, err := state.NewFileStore(logger.NewNop(), statePath)
	require.NoError(t, err)

	cli := New(logger.NewNop(), cliKV, opts)
	server := New(logger.NewNop(), serverKV, opts)

	authURL, err := cli.AuthorizationURL("dave")
	require.NoError(t, err)

	user, err := server.Complete(ctx, url.Values{
		"state": {stateFromURL(t, authURL)},
		"code":  {"code-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "dave", user)

	token, err := cli.EnsureAuthorized(ctx, "dave")
	require.NoError(t, err)
	assert.Equal(t, "xoxp-cli", token)

	users, err := server.Tokens().Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dave"}, users, "the secret must not show up as a user")

	otherKV, err := state.NewFileStore(logger.NewNop(), filepath.Join(t.TempDir(), "other.json"))
	require.NoError(t, err)
	other := New(logger.NewNop(), otherKV, opts)
	_, err = other.parseState(stateFromURL(t, authURL))
	assert.ErrorIs(t, err, ErrInvalidState)
}
